package poll

import "goodminton/courts"

// Options renders summaries as poll options, split into chunks of at most
// max so each chunk fits in one poll.
func Options(summaries []courts.AvailabilitySummary, max int) [][]string {
	if len(summaries) == 0 {
		return nil
	}
	if max < 1 {
		max = len(summaries)
	}
	var chunks [][]string
	for start := 0; start < len(summaries); start += max {
		end := min(start+max, len(summaries))
		chunk := make([]string, 0, end-start)
		for _, s := range summaries[start:end] {
			chunk = append(chunk, s.String())
		}
		chunks = append(chunks, chunk)
	}
	// Telegram polls need two options.
	if n := len(chunks); n > 1 && len(chunks[n-1]) == 1 && len(chunks[n-2]) > 2 {
		prev := chunks[n-2]
		chunks[n-1] = append([]string{prev[len(prev)-1]}, chunks[n-1]...)
		chunks[n-2] = prev[:len(prev)-1]
	}
	return chunks
}
