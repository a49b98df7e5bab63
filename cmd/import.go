package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kozaktomas/face-attendance/internal/apiclient"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-register students from a YAML roster file",
	Long: `Import a roster of students from a YAML file. Each entry carries the
student's USN, name and reference descriptor:

  students:
    - usn: 1MS21CS001
      name: Asha
      face_data: [0.12, -0.08, ...]

Already-registered USNs are reported and skipped.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("file", "", "Path to the YAML roster file (required)")
	importCmd.Flags().String("api-url", "", "Attendance API base URL (defaults to ATTENDANCE_API_URL)")
}

type rosterFile struct {
	Students []rosterEntry `yaml:"students"`
}

type rosterEntry struct {
	USN      string    `yaml:"usn"`
	Name     string    `yaml:"name"`
	FaceData []float32 `yaml:"face_data"`
}

func loadRosterFile(path string) (*rosterFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read roster file: %w", err)
	}

	var roster rosterFile
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("could not parse roster file: %w", err)
	}

	for _, entry := range roster.Students {
		if entry.USN == "" || entry.Name == "" {
			return nil, fmt.Errorf("roster entry missing usn or name: %+v", entry)
		}
		if len(entry.FaceData) != constants.DescriptorDim {
			return nil, fmt.Errorf("student %s: face_data must contain %d values, got %d",
				entry.USN, constants.DescriptorDim, len(entry.FaceData))
		}
	}
	return &roster, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	file := mustGetString(cmd, "file")
	if file == "" {
		return errors.New("--file is required")
	}

	apiURL := mustGetString(cmd, "api-url")
	if apiURL == "" {
		apiURL = config.Load().API.URL
	}
	if apiURL == "" {
		return errors.New("ATTENDANCE_API_URL environment variable or --api-url is required")
	}

	roster, err := loadRosterFile(file)
	if err != nil {
		return err
	}
	if len(roster.Students) == 0 {
		return errors.New("roster file contains no students")
	}

	api, err := apiclient.NewClient(apiURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	bar := progressbar.Default(int64(len(roster.Students)), "registering")
	imported := 0
	var failed []string
	for _, entry := range roster.Students {
		if err := api.RegisterStudent(ctx, entry.USN, entry.Name, entry.FaceData); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", entry.USN, err))
		} else {
			imported++
		}
		_ = bar.Add(1)
	}

	fmt.Printf("\nImported %d/%d students\n", imported, len(roster.Students))
	for _, f := range failed {
		fmt.Printf("  skipped %s\n", f)
	}
	return nil
}
