package shellenv

import "strings"

const (
	blockStart = "# >>> groundcrew >>>"
	blockEnd   = "# <<< groundcrew <<<"
)

// ReadManagedBlock extracts the content between groundcrew markers.
// Returns empty string if the block is not found.
func ReadManagedBlock(content string) string {
	startIdx := strings.Index(content, blockStart)
	if startIdx == -1 {
		return ""
	}

	endIdx := strings.Index(content, blockEnd)
	if endIdx == -1 {
		return ""
	}

	bodyStart := startIdx + len(blockStart)
	if bodyStart < len(content) && content[bodyStart] == '\n' {
		bodyStart++
	}

	if bodyStart >= endIdx {
		return ""
	}

	return content[bodyStart:endIdx]
}

// WriteManagedBlock replaces (or appends) the managed block in the content.
func WriteManagedBlock(content, block string) string {
	managedBlock := blockStart + "\n" + block + blockEnd + "\n"

	startIdx := strings.Index(content, blockStart)
	if startIdx == -1 {
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content + "\n" + managedBlock
	}

	endIdx := strings.Index(content, blockEnd)
	if endIdx == -1 {
		// Malformed block: start marker without end. Replace to EOF.
		return content[:startIdx] + managedBlock
	}

	afterEnd := endIdx + len(blockEnd)
	if afterEnd < len(content) && content[afterEnd] == '\n' {
		afterEnd++
	}

	return content[:startIdx] + managedBlock + content[afterEnd:]
}

// renderBlock joins profile lines into the managed block body.
func renderBlock(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
