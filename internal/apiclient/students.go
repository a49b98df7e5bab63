package apiclient

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/recognition"
)

type studentResponse struct {
	USN        string    `json:"usn"`
	Name       string    `json:"name"`
	Descriptor []float32 `json:"descriptor"`
}

type studentListResponse struct {
	Students []studentResponse `json:"students"`
}

// LoadRoster downloads the full student directory with descriptors and
// builds the roster snapshot used for the rest of the watch run.
func (c *Client) LoadRoster(ctx context.Context) (*recognition.Roster, error) {
	resp, err := doGetJSON[studentListResponse](ctx, c, "students?descriptors=true")
	if err != nil {
		return nil, fmt.Errorf("could not load roster: %w", err)
	}

	profiles := make([]recognition.Profile, 0, len(resp.Students))
	for _, s := range resp.Students {
		profiles = append(profiles, recognition.Profile{
			USN:        s.USN,
			Name:       s.Name,
			Descriptor: s.Descriptor,
		})
	}

	return recognition.NewRoster(profiles), nil
}

type registerStudentRequest struct {
	USN      string    `json:"usn"`
	Name     string    `json:"name"`
	FaceData []float32 `json:"face_data"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// RegisterStudent creates a student with a reference descriptor.
func (c *Client) RegisterStudent(ctx context.Context, usn, name string, descriptor []float32) error {
	body := registerStudentRequest{USN: usn, Name: name, FaceData: descriptor}
	if _, err := doPostJSON[messageResponse](ctx, c, body, "students", "register"); err != nil {
		return fmt.Errorf("could not register student %s: %w", usn, err)
	}
	return nil
}
