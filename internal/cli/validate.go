package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"quiz-studio-service/internal/domain"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewValidateCmd checks a quiz file offline with the same rules the API applies on save.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a quiz draft stored as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadDraftFile(args[0])
			if err == nil {
				err = domain.ValidateDraft(in.Title, in.Questions)
			}
			if err != nil {
				if reason := domain.ReasonOf(err); reason != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "rejected (%s): %v\n", reason, err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "accepted: %q with %d questions\n", strings.TrimSpace(in.Title), len(in.Questions))
			return nil
		},
	}
}

func loadDraftFile(path string) (domain.DraftInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.DraftInput{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return domain.DraftInput{}, fmt.Errorf("parse yaml: %w", err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return domain.DraftInput{}, fmt.Errorf("convert yaml: %w", err)
		}
	}
	return domain.ParseDraft(data)
}
