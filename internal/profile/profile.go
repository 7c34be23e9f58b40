// Package profile holds the output encoding profiles a quiz video can be
// rendered for. All profiles share the fixed vertical geometry; they differ
// in bitrate targets for their destination platform.
package profile

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/quizreel/quizreel/pkg/types"
)

// Profile defines the interface for destination-specific encoding settings
type Profile interface {
	// GetName returns the profile name
	GetName() types.OutputProfile

	// GetVideoCodec returns the preferred video codec
	GetVideoCodec() string

	// GetAudioCodec returns the preferred audio codec
	GetAudioCodec() string

	// GetVideoBitrate returns the recommended video bitrate
	GetVideoBitrate() string

	// GetAudioBitrate returns the recommended audio bitrate
	GetAudioBitrate() string
}

var profiles = make(map[string]Profile)

// Register adds a profile to the registry
func Register(p Profile) {
	profiles[string(p.GetName())] = p
}

// Get returns a profile by name
func Get(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unsupported profile: %s", name)
	}
	return p, nil
}

// GetSupportedProfiles returns a sorted list of supported profile names
func GetSupportedProfiles() []string {
	names := maps.Keys(profiles)
	slices.Sort(names)
	return names
}
