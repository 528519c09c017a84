package client

import "strings"

// WebSpeechPrefix marks an audio_url that carries text to synthesize in the browser instead of a fetchable resource
const WebSpeechPrefix = "webspeech:"

type AudioKind int

const (
	AudioNone   AudioKind = iota // no audio_url in the response
	AudioRemote                  // audio_url is a resource the browser can fetch
	AudioSpeech                  // synthesize Text locally
)

// AudioSource describes how a text-to-speech result should be played
type AudioSource struct {
	Kind AudioKind
	URL  string
	Text string
}

// ParseAudioURL interprets the audio_url of a text-to-speech response.
//
// "webspeech:Hello world" yields AudioSpeech with Text "Hello world".
func ParseAudioURL(audioURL string) AudioSource {
	switch {
	case audioURL == "":
		return AudioSource{Kind: AudioNone}
	case strings.HasPrefix(audioURL, WebSpeechPrefix):
		return AudioSource{Kind: AudioSpeech, Text: strings.TrimPrefix(audioURL, WebSpeechPrefix)}
	default:
		return AudioSource{Kind: AudioRemote, URL: audioURL}
	}
}

// ResolveURL makes a relative audio URL absolute against the backend origin
func (c *Client) ResolveURL(audio AudioSource) string {
	if audio.Kind != AudioRemote {
		return ""
	}
	if strings.HasPrefix(audio.URL, "/") {
		return c.baseURL + audio.URL
	}
	return audio.URL
}
