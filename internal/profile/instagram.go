package profile

import "github.com/quizreel/quizreel/pkg/types"

type InstagramReel struct{}

func init() {
	Register(&InstagramReel{})
}

func (p *InstagramReel) GetName() types.OutputProfile {
	return types.OutputProfileInstagramReel
}

func (p *InstagramReel) GetVideoCodec() string {
	return "libx264" // H.264 for better compatibility
}

func (p *InstagramReel) GetAudioCodec() string {
	return "aac"
}

func (p *InstagramReel) GetVideoBitrate() string {
	return "2M"
}

func (p *InstagramReel) GetAudioBitrate() string {
	return "128k"
}
