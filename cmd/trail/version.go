package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trail/internal/version"
)

const versionTagline = "every failure knows the way it came"

var (
	versionFormat   string
	versionShowFull bool
)

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "include commit hash and build timestamp")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show trail build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch strings.ToLower(versionFormat) {
		case "pretty":
			fmt.Fprintf(out, "trail %s (%s)\n", version.Version, versionTagline)
			if versionShowFull {
				fmt.Fprintf(out, "  commit: %s\n", orUnknown(version.GitCommit))
				fmt.Fprintf(out, "  built:  %s\n", orUnknown(version.BuildDate))
			}
			return nil
		case "json":
			payload := struct {
				Tool      string `json:"tool"`
				Version   string `json:"version"`
				Tagline   string `json:"tagline"`
				GitCommit string `json:"git_commit,omitempty"`
				BuildDate string `json:"build_date,omitempty"`
			}{Tool: "trail", Version: version.Version, Tagline: versionTagline}
			if versionShowFull {
				payload.GitCommit = orUnknown(version.GitCommit)
				payload.BuildDate = orUnknown(version.BuildDate)
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
