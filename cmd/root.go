package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-attendance",
	Short: "Classroom attendance tracking backed by face recognition",
	Long: `Face Attendance is a classroom attendance system. The serve command runs
the backend API (student directory, sessions, attendance ledger); the watch
command runs the recognition loop that marks students present as the camera
sees them.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
