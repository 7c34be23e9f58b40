package types

type OutputProfile string

const (
	OutputProfileTikTok        OutputProfile = "tiktok"
	OutputProfileInstagramReel OutputProfile = "instagram-reel"
)
