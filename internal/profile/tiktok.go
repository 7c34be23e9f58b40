package profile

import "github.com/quizreel/quizreel/pkg/types"

type TikTok struct{}

func init() {
	Register(&TikTok{})
}

func (p *TikTok) GetName() types.OutputProfile {
	return types.OutputProfileTikTok
}

func (p *TikTok) GetVideoCodec() string {
	return "libx264"
}

func (p *TikTok) GetAudioCodec() string {
	return "aac"
}

func (p *TikTok) GetVideoBitrate() string {
	return "4M"
}

func (p *TikTok) GetAudioBitrate() string {
	return "128k"
}
