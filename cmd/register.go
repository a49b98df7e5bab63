package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kozaktomas/face-attendance/internal/apiclient"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a single student from a descriptor file",
	Long: `Register a student in the directory. The descriptor file contains the
student's reference face descriptor as a JSON array of 128 numbers, as
produced by the extractor service.`,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("usn", "", "Student USN (required)")
	registerCmd.Flags().String("name", "", "Student name (required)")
	registerCmd.Flags().String("file", "", "Path to the JSON descriptor file (required)")
	registerCmd.Flags().String("api-url", "", "Attendance API base URL (defaults to ATTENDANCE_API_URL)")
}

func readDescriptorFile(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read descriptor file: %w", err)
	}

	var descriptor []float32
	if err := json.Unmarshal(data, &descriptor); err != nil {
		return nil, fmt.Errorf("could not parse descriptor file: %w", err)
	}
	if len(descriptor) != constants.DescriptorDim {
		return nil, fmt.Errorf("descriptor must contain %d values, got %d", constants.DescriptorDim, len(descriptor))
	}
	return descriptor, nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	usn := mustGetString(cmd, "usn")
	name := mustGetString(cmd, "name")
	file := mustGetString(cmd, "file")
	if usn == "" || name == "" || file == "" {
		return errors.New("--usn, --name and --file are required")
	}

	apiURL := mustGetString(cmd, "api-url")
	if apiURL == "" {
		apiURL = config.Load().API.URL
	}
	if apiURL == "" {
		return errors.New("ATTENDANCE_API_URL environment variable or --api-url is required")
	}

	descriptor, err := readDescriptorFile(file)
	if err != nil {
		return err
	}

	api, err := apiclient.NewClient(apiURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := api.RegisterStudent(ctx, usn, name, descriptor); err != nil {
		return err
	}

	fmt.Printf("Registered %s (%s)\n", name, usn)
	return nil
}
