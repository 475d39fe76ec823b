package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/zeu5/tictactoe-rl/tictactoe"
)

// FormatVersion of the encoded artifact
const FormatVersion = 1

var (
	ErrCorrupt  = errors.New("corrupt policy artifact")
	ErrNotFound = errors.New("policy artifact not found")
)

type fileFormat struct {
	Version  int                `json:"version"`
	RunID    string             `json:"run_id,omitempty"`
	Episodes int                `json:"episodes,omitempty"`
	Values   map[string]float64 `json:"values"`
}

// Encode serializes the policy. Keys are sorted so equal policies encode to equal bytes.
func Encode(p *Policy) ([]byte, error) {
	return json.Marshal(fileFormat{
		Version:  FormatVersion,
		RunID:    p.runID,
		Episodes: p.episodes,
		Values:   p.Values(),
	})
}

// Decode parses and validates an encoded policy
func Decode(bs []byte) (*Policy, error) {
	f := fileFormat{}
	if err := json.Unmarshal(bs, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if f.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, f.Version)
	}
	if f.Values == nil {
		return nil, fmt.Errorf("%w: missing values", ErrCorrupt)
	}
	values, err := parseValues(f.Values)
	if err != nil {
		return nil, err
	}
	return &Policy{
		runID:    f.RunID,
		episodes: f.Episodes,
		values:   values,
	}, nil
}

func parseValues(raw map[string]float64) (map[tictactoe.Board]float64, error) {
	values := make(map[tictactoe.Board]float64, len(raw))
	for key, v := range raw {
		b, err := tictactoe.ParseBoard(key)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrCorrupt, key, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: key %q has non finite value", ErrCorrupt, key)
		}
		values[b] = v
	}
	return values, nil
}

// Save writes the policy to path, replacing any previous file atomically
func Save(path string, p *Policy) error {
	bs, err := Encode(p)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, bs, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads a policy saved with Save. A missing or corrupt file is an error.
func Load(path string) (*Policy, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	return Decode(bs)
}
