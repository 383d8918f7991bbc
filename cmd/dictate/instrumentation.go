package main

import "go.opentelemetry.io/contrib/bridges/otelslog"

const instrumentationScope = "github.com/koscakluka/ema-dictation/cmd/dictate"

var logger = otelslog.NewLogger(instrumentationScope)
