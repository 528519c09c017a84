package client

import "context"

// Voices offered by the UI. The backend accepts any value.
var Voices = []string{DefaultVoice, "female", "male"}

// TextToSpeech converts text to speech. An empty voice is sent as DefaultVoice.
//
// Use Speech.Audio to decide how the result is played (see ParseAudioURL).
func (c *Client) TextToSpeech(ctx context.Context, text, voice string) Result[Speech] {
	if blank(text) {
		return rejected[Speech](CapabilityTextToSpeech, "text")
	}
	if voice == "" {
		voice = DefaultVoice
	}

	raw, err := c.postMultipart(ctx, CapabilityTextToSpeech, []formField{
		{"text", text},
		{"voice", voice},
	}, nil)
	if err != nil {
		c.logFailure(ctx, CapabilityTextToSpeech, err)
		return failure[Speech](CapabilityTextToSpeech, err)
	}

	return decodeResult[Speech](CapabilityTextToSpeech, raw)
}
