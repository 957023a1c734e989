package excel

// RawTable is a tabular file read as literal strings
type RawTable struct {
	Headers []string   // Column headers, trimmed
	Rows    [][]string // Data rows, one cell per header, untrimmed
}

// Column returns the index of the named header, or -1
func (t *RawTable) Column(name string) int {
	for i, header := range t.Headers {
		if header == name {
			return i
		}
	}
	return -1
}
