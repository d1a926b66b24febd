package entity

// SpeechSynthesizeRequest asks the voice-synthesis service for audio of one
// text. An empty VoiceID selects the service default voice.
type SpeechSynthesizeRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id,omitempty"`
}

// SpeechSynthesizeResponse carries the synthesized clip with word-level
// timing annotations.
type SpeechSynthesizeResponse struct {
	Audio          []byte          `json:"audio"`
	WordTimestamps []WordTimestamp `json:"word_timestamps"`
	Duration       float64         `json:"duration"`
}
