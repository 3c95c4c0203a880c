package board

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

const (
	ExcludeActorUser    = "user"
	ExcludeActorRanking = "ranking"
)

type ExcludedApplications struct {
	Items []*ExcludedApplication
}

type ExcludedApplication struct {
	ID         string
	JobID      string
	Candidate  string
	ExcludedAt time.Time
	Actor      string `json:",omitempty"`
	Reason     string `json:",omitempty"`
}

// GetExcludedApplicationsFromFile loads an exclusion list. A missing or empty file is an empty list.
func GetExcludedApplicationsFromFile(path string) (*ExcludedApplications, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedApplications{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedApplications{}, nil
	}

	var excluded ExcludedApplications
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds entries whose id is not already present.
func (e *ExcludedApplications) Append(s *ExcludedApplications) {
	known := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		known[item.ID] = struct{}{}
	}
	for _, item := range s.Items {
		if _, ok := known[item.ID]; ok {
			continue
		}
		known[item.ID] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

func (e *ExcludedApplications) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (e *ExcludedApplications) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
