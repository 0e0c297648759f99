// Package djelia provides a Go client for the Djelia API: translation,
// speech transcription and text-to-speech for Malian languages.
//
// # Basic Usage
//
//	client, err := djelia.NewClient("") // reads DJELIA_API_KEY
//	if err != nil {
//	    return err
//	}
//
//	// Translation
//	resp, err := client.Translate(ctx, djelia.TranslateRequest{
//	    Text:   "Hello",
//	    Source: "en",
//	    Target: "bam",
//	})
//
//	// Transcription, API version 2
//	tr, err := client.Transcribe(ctx, djelia.TranscribeRequest{
//	    Audio:   djelia.AudioFile("interview.wav"),
//	    Version: 2,
//	})
//
//	// Speech synthesis to a file
//	path, err := client.SynthesizeSpeechTo(ctx, djelia.NewSpeechRequest("Aw ni ce"), djelia.FileSink("greeting.wav"))
//
// # Streaming
//
// StreamTranscribe returns an iter.Seq2 usable with range:
//
//	for seg, err := range client.StreamTranscribe(ctx, req) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(seg.Text)
//	}
//
// # Asynchronous Client
//
// AsyncClient has the same operations but returns channels:
//
//	err := djelia.WithAsyncClient("", nil, func(c *djelia.AsyncClient) error {
//	    res := <-c.Translate(ctx, req)
//	    return res.Err
//	})
//
// # Error Handling
//
// Parameter problems (unsupported language, speaker or version) are reported
// before any request is sent. All domain failures are *Error values:
//
//	if errors.Is(err, djelia.ErrLanguage) {
//	    // unsupported source or target
//	}
//	if e, ok := djelia.AsError(err); ok && e.Kind == djelia.KindAPI {
//	    log.Printf("status %d: %s", e.StatusCode, e.Message)
//	}
package djelia
