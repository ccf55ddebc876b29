package formatter

// RewriteIssueFormatter lays out pending arithmetic rewrites. The
// suggestion replaces the whole shown region, so there is no underline;
// the replacement source gets the prominent block instead.
type RewriteIssueFormatter struct{}

func (f *RewriteIssueFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding -}}
{{message .Message .Padding}}
{{- if .Suggestion }}
{{suggestion .Suggestion .Padding .MaxLineNumWidth .StartLine}}
{{- end }}
{{- if .Note }}
{{note .Note}}
{{- end }}
`
}
