package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/face-attendance/internal/apiclient"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/extractor"
	"github.com/kozaktomas/face-attendance/internal/recognition"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the recognition loop for an attendance session",
	Long: `Watch the camera feed and mark students present as they are recognized.
A student must be matched in several consecutive frames before being
confirmed; each student is confirmed at most once per session.

Without --session a new session is created for today.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Int64("session", 0, "Existing session ID to mark into (0 creates a new session)")
	watchCmd.Flags().Int("semester", 0, "Semester for a newly created session")
	watchCmd.Flags().String("api-url", "", "Attendance API base URL (defaults to ATTENDANCE_API_URL)")
	watchCmd.Flags().String("extractor-url", "", "Descriptor extractor base URL (defaults to EXTRACTOR_URL)")
}

func resolveWatchSession(ctx context.Context, cmd *cobra.Command, api *apiclient.Client) (int64, error) {
	if sessionID := mustGetInt64(cmd, "session"); sessionID > 0 {
		return sessionID, nil
	}

	semester := mustGetInt(cmd, "semester")
	if semester < 1 {
		return 0, errors.New("either --session or --semester is required")
	}

	sessionID, err := api.CreateSession(ctx, time.Now().Format("2006-01-02"), semester)
	if err != nil {
		return 0, err
	}
	fmt.Printf("Created session %d for today\n", sessionID)
	return sessionID, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	apiURL := mustGetString(cmd, "api-url")
	if apiURL == "" {
		apiURL = cfg.API.URL
	}
	if apiURL == "" {
		return errors.New("ATTENDANCE_API_URL environment variable or --api-url is required")
	}

	extractorURL := mustGetString(cmd, "extractor-url")
	if extractorURL == "" {
		extractorURL = cfg.Extractor.URL
	}
	if extractorURL == "" {
		return errors.New("EXTRACTOR_URL environment variable or --extractor-url is required")
	}

	api, err := apiclient.NewClient(apiURL)
	if err != nil {
		return err
	}
	source, err := extractor.NewClient(extractorURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionID, err := resolveWatchSession(ctx, cmd, api)
	if err != nil {
		return err
	}

	// The roster snapshot is taken once; students registered after this
	// point are picked up by the next watch run.
	roster, err := api.LoadRoster(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded roster with %d students\n", roster.Len())

	if cfg.Database.HNSWIndexPath != "" {
		if err := roster.LoadIndex(cfg.Database.HNSWIndexPath); err != nil {
			fmt.Printf("Warning: could not load roster index: %v\n", err)
			roster.BuildIndex()
		}
	} else {
		roster.BuildIndex()
	}

	matcher := recognition.NewMatcher(roster, cfg.Recognition.DistanceThreshold)
	debouncer := recognition.NewDebouncer(cfg.Recognition.RequiredHits)
	ledger := recognition.NewLedger(api, api)
	interval := time.Duration(cfg.Recognition.FrameIntervalMs) * time.Millisecond
	runner := recognition.NewRunner(source, matcher, debouncer, ledger, interval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nStopping watch...")
		cancel()
	}()

	state := recognition.NewSessionState(sessionID)
	if err := runner.Run(ctx, state); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if cfg.Database.HNSWIndexPath != "" {
		if err := roster.SaveIndex(cfg.Database.HNSWIndexPath); err != nil {
			fmt.Printf("Warning: could not save roster index: %v\n", err)
		}
	}

	printSummary(api, sessionID)
	return nil
}

func printSummary(api *apiclient.Client, sessionID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	present, absent, total, err := api.FetchSummary(ctx, sessionID)
	if err != nil {
		fmt.Printf("No summary available for session %d: %v\n", sessionID, err)
		return
	}
	fmt.Printf("Session %d: %d present, %d absent, %d registered\n", sessionID, present, absent, total)
}
