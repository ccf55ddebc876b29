package formatter

// ContractIssueFormatter lays out propagating contract violations. The
// issue points at the directive that could not be honored, so the
// underline is a single mark on it and the note says how to satisfy the
// contract. Contract issues never carry a suggestion.
type ContractIssueFormatter struct{}

func (f *ContractIssueFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .CommonIndent}}
{{- if .Note }}
{{note .Note}}
{{- end }}
`
}
