package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koscakluka/ema-dictation/core/prompts"
)

var (
	promptListSections bool
	promptAdvanced     bool
	promptDictionary   bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the formatting instruction sent at the start of each turn",
	Long: `Print the instruction composed from the configured prompt sections.

--advanced and --dictionary override the configuration for this output
only.`,
	RunE: runPrompt,
}

func init() {
	promptCmd.Flags().BoolVar(&promptListSections, "sections", false, "list the effective sections instead of the composed text")
	promptCmd.Flags().BoolVar(&promptAdvanced, "advanced", true, "include the advanced section")
	promptCmd.Flags().BoolVar(&promptDictionary, "dictionary", false, "include the dictionary section")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sections, err := cfg.PromptSections()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("advanced") {
		sections.AdvancedEnabled = promptAdvanced
	}
	if cmd.Flags().Changed("dictionary") {
		sections.DictionaryEnabled = promptDictionary
	}

	out := cmd.OutOrStdout()
	if !promptListSections {
		fmt.Fprintln(out, prompts.Compose(sections))
		return nil
	}

	for _, section := range prompts.Sections(sections) {
		source := "default"
		if section.Overridden {
			source = "override"
		}
		fmt.Fprintf(out, "%-10s %-8s %d chars\n", section.Name, source, len(section.Text))
	}
	return nil
}
