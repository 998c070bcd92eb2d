package library

import "github.com/n2code/acewriter/internal/output"

func ColorForStatus(status FileStatus) output.Color {
	switch status {
	case Unchanged:
		return output.DefaultForeground
	case Written:
		return output.Green //color of good news
	case Skipped:
		return output.Yellow //color of attention
	case Deleted:
		return output.Magenta //color of waste
	default:
		return output.DefaultForeground
	}
}
