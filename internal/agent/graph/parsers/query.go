package parsers

// DecodeQueries reads the "queries" list of a recovered query-generation answer.
func DecodeQueries(m map[string]any) []string {
	return strList(firstValue(m, "queries", "keywords", "search_queries"))
}
