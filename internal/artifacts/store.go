package artifacts

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"heartrisk/internal/features"
)

// Info describes one loaded artifact.
type Info struct {
	Role    Role   `json:"role"`
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Version string `json:"version"`
	SHA256  string `json:"sha256"`
}

// Set is the pair of fitted artifacts a process serves with.
//
// A Set is built once by Load and never changes afterwards, so it can be
// shared by any number of concurrent requests without locking.
type Set struct {
	scaler     Scaler
	classifier Classifier
	info       [2]Info
}

// Load reads and validates the scaler and classifier artifacts. Any failure
// is reported as a *LoadError naming the offending path.
func Load(scalerPath, classifierPath string) (*Set, error) {
	order := features.Order()

	var sd scalerDoc
	sinfo, err := readDoc(RoleScaler, scalerPath, &sd)
	if err != nil {
		return nil, err
	}
	scaler, err := sd.build(order)
	if err != nil {
		return nil, &LoadError{Role: RoleScaler, Path: scalerPath, Err: err}
	}
	sinfo.Kind, sinfo.Version = sd.Kind, sd.Version

	var cd classifierDoc
	cinfo, err := readDoc(RoleClassifier, classifierPath, &cd)
	if err != nil {
		return nil, err
	}
	classifier, err := cd.build(order)
	if err != nil {
		return nil, &LoadError{Role: RoleClassifier, Path: classifierPath, Err: err}
	}
	cinfo.Kind, cinfo.Version = cd.Kind, cd.Version

	return &Set{
		scaler:     scaler,
		classifier: classifier,
		info:       [2]Info{sinfo, cinfo},
	}, nil
}

// NewSet wraps already constructed artifacts, for callers that do not load
// them from disk.
func NewSet(scaler Scaler, classifier Classifier) *Set {
	return &Set{
		scaler:     scaler,
		classifier: classifier,
		info: [2]Info{
			{Role: RoleScaler, Kind: fmt.Sprintf("%T", scaler)},
			{Role: RoleClassifier, Kind: fmt.Sprintf("%T", classifier)},
		},
	}
}

func readDoc(role Role, path string, out any) (Info, error) {
	if path == "" {
		return Info{}, &LoadError{Role: role, Path: path, Err: fmt.Errorf("%w: empty path", ErrNotFound)}
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return Info{}, &LoadError{Role: role, Path: path, Err: err}
	}
	if err := decodeDoc(buf, out); err != nil {
		return Info{}, &LoadError{Role: role, Path: path, Err: err}
	}
	sum := sha256.Sum256(buf)
	return Info{Role: role, Path: path, SHA256: hex.EncodeToString(sum[:])}, nil
}

func (s *Set) Scaler() Scaler { return s.scaler }

func (s *Set) Classifier() Classifier { return s.classifier }

// Info returns the scaler and classifier metadata, in that order.
func (s *Set) Info() []Info {
	return []Info{s.info[0], s.info[1]}
}

// Paths returns the files the set was loaded from.
func (s *Set) Paths() []string {
	var paths []string
	for _, i := range s.info {
		if i.Path != "" {
			paths = append(paths, i.Path)
		}
	}
	return paths
}
