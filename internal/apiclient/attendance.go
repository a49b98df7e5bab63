package apiclient

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

type sessionResponse struct {
	SessionID int64  `json:"session_id"`
	Date      string `json:"date"`
	Semester  int    `json:"semester"`
}

// CreateSession opens a new attendance session for today.
func (c *Client) CreateSession(ctx context.Context, date string, semester int) (int64, error) {
	body := map[string]any{"date": date, "semester": semester}
	resp, err := doPostJSON[sessionResponse](ctx, c, body, "attendance", "sessions")
	if err != nil {
		return 0, fmt.Errorf("could not create session: %w", err)
	}
	return resp.SessionID, nil
}

type markRequest struct {
	SessionID int64  `json:"session_id"`
	USN       string `json:"usn"`
	Status    string `json:"status"`
}

// MarkPresent records a student as present in a session. The backend upserts,
// so repeated calls for the same student are safe.
func (c *Client) MarkPresent(ctx context.Context, sessionID int64, usn string) error {
	body := markRequest{SessionID: sessionID, USN: usn, Status: constants.StatusPresent}
	if _, err := doPostJSON[messageResponse](ctx, c, body, "attendance", "mark"); err != nil {
		return fmt.Errorf("could not mark %s: %w", usn, err)
	}
	return nil
}

type summaryResponse struct {
	PresentCount  int `json:"present_count"`
	AbsentCount   int `json:"absent_count"`
	TotalStudents int `json:"total_students"`
}

// FetchSummary reads back the attendance counts for a session.
func (c *Client) FetchSummary(ctx context.Context, sessionID int64) (present, absent, total int, err error) {
	resp, err := doGetJSON[summaryResponse](ctx, c, "attendance", "summary", strconv.FormatInt(sessionID, 10))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("could not fetch summary for session %d: %w", sessionID, err)
	}
	return resp.PresentCount, resp.AbsentCount, resp.TotalStudents, nil
}

var _ recognition.Marker = (*Client)(nil)
var _ recognition.SummaryFetcher = (*Client)(nil)
