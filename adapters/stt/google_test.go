package stt_test

import (
	"github.com/satriahrh/farsisub/adapters/stt"
	"github.com/satriahrh/farsisub/domain/repositories"
)

var (
	_ repositories.SpeechToText = &stt.GoogleSpeechToText{}
	_ repositories.SpeechToText = &stt.WhisperSpeechToText{}
	_ repositories.SpeechToText = &stt.MockSpeechToText{}
)
