// Package miniaudio captures microphone audio through miniaudio as mono
// linear16 frames.
package miniaudio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-dictation/core/audio"
)

type Client struct {
	// audioContext is only kept so it can be released on Close
	audioContext *malgo.AllocatedContext
	captureClient

	sampleRate int
	device     string
}

type ClientOption func(*Client)

// WithDevice selects a capture device by ID or name. The system default is
// used when it is not set.
func WithDevice(device string) ClientOption {
	return func(c *Client) { c.device = device }
}

func WithSampleRate(sampleRate int) ClientOption {
	return func(c *Client) { c.sampleRate = sampleRate }
}

func NewClient(opts ...ClientOption) (*Client, error) {
	client := Client{sampleRate: audio.DefaultSampleRate}
	for _, opt := range opts {
		opt(&client)
	}

	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	client.audioContext = audioCtx

	var deviceID *malgo.DeviceID
	if client.device != "" {
		devices, err := captureDevices(audioCtx)
		if err != nil {
			client.Close()
			return nil, err
		}
		device, err := findDevice(devices, client.device)
		if err != nil {
			client.Close()
			return nil, err
		}
		deviceID = &device.id
	}

	if err := client.captureClient.Init(audioCtx, client.sampleRate, deviceID); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture client: %w", err)
	}

	return &client, nil
}

// Stream starts capturing and keeps delivering frames until Close.
func (c *Client) Stream(_ context.Context, onAudio func(audio []byte)) error {
	return c.captureClient.Start(onAudio)
}

func (c *Client) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	return c.captureClient.Start(onAudio)
}

func (c *Client) StopCapture() error {
	return c.captureClient.Stop()
}

func (c *Client) Close() {
	c.captureClient.Uninit()
	if c.audioContext != nil {
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
		c.audioContext = nil
	}
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: c.sampleRate,
		Format:     audio.EncodingLinear16,
	}
}
