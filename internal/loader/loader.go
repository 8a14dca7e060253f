// Package loader supplies per-trial kinematic time series to the pipeline.
// Trials are plain JSON exports of the motion-capture toe trajectories, one
// file per trial, grouped into one directory per subject:
//
//	data/
//	  subject1/
//	    trial_01.json
//	    trial_02.json
//	  subject2/
//	    ...
//
// Each file carries the shared time base and the left/right vertical toe
// positions in meters. Trial numbering restarts per subject and follows
// lexical file order.
package loader

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kinelab/dropjump/internal/kinematics"
)

type trialFile struct {
	Subject   string    `json:"subject,omitempty"`
	Time      []float64 `json:"time"`
	LeftToeY  []float64 `json:"left_toe_y,omitempty"`
	RightToeY []float64 `json:"right_toe_y,omitempty"`
}

// LoadSessions walks the data directory and builds one session per subject.
// Malformed trial files are logged and skipped; they never abort the batch.
func LoadSessions(root string, logger *slog.Logger) ([]*kinematics.Session, error) {
	files, err := findTrialFiles(root)
	if err != nil {
		return nil, fmt.Errorf("scanning data directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no trial files found under '%s'", root)
	}

	bySubject := make(map[string][]string)
	var subjects []string
	for _, path := range files {
		subject := subjectFor(root, path)
		if _, ok := bySubject[subject]; !ok {
			subjects = append(subjects, subject)
		}
		bySubject[subject] = append(bySubject[subject], path)
	}
	sort.Strings(subjects)

	var sessions []*kinematics.Session
	for _, subject := range subjects {
		session := &kinematics.Session{Subject: subject}

		for _, path := range bySubject[subject] {
			trial, err := loadTrial(path, subject, len(session.Trials)+1)
			if err != nil {
				logger.Warn("skipping trial file",
					slog.String("path", path),
					slog.String("error", err.Error()))
				continue
			}
			session.Trials = append(session.Trials, trial)
		}

		if len(session.Trials) > 0 {
			sessions = append(sessions, session)
		}
	}

	return sessions, nil
}

func findTrialFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// subjectFor derives the subject from the first directory level under the
// data root, falling back to "unknown" for files sitting directly in it
func subjectFor(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "unknown"
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[0]
}

func loadTrial(path, subject string, id int) (*kinematics.Trial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trial file: %w", err)
	}

	var tf trialFile
	if err = json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing trial file: %w", err)
	}
	if len(tf.Time) == 0 {
		return nil, fmt.Errorf("trial file has no time channel")
	}
	if len(tf.LeftToeY) == 0 && len(tf.RightToeY) == 0 {
		return nil, fmt.Errorf("trial file has no toe channels")
	}

	if tf.Subject != "" {
		subject = tf.Subject
	}

	trial := &kinematics.Trial{Subject: subject, ID: id}

	if len(tf.LeftToeY) > 0 {
		if trial.LeftToe, err = kinematics.NewTimeSeries(tf.Time, tf.LeftToeY); err != nil {
			return nil, fmt.Errorf("left toe channel: %w", err)
		}
	}
	if len(tf.RightToeY) > 0 {
		if trial.RightToe, err = kinematics.NewTimeSeries(tf.Time, tf.RightToeY); err != nil {
			return nil, fmt.Errorf("right toe channel: %w", err)
		}
	}

	return trial, nil
}
