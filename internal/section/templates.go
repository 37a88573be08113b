// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package section

// builtin holds the default template for each mode and section. Research
// templates print no numbers of their own; every number they emit comes
// from a finding, a source path, or a figure name.
var builtin = map[Mode]map[string]string{
	ModeResearch: {
		Abstract: `% Abstract
We present results computed directly from the experimental outputs of this project.
{{- range .Summaries}} {{tex .Claim}}.{{end}}
{{- range .WinRates}} {{tex .Claim}}.{{end}}
`,
		Introduction: `\section{Introduction}

This paper reports {{if .WinRates}}comparative {{end}}experimental results drawn from the tabular outputs of the project{{if .Figures}} and the accompanying figures{{end}}.
Every quantitative statement below is taken verbatim from those outputs.
`,
		Methods: `\section{Methods}

Results were computed from the following experimental outputs.
{{- if .Sources}}
\begin{itemize}
{{range .Sources}}\item \texttt{ {{- tex .}}}
{{end}}\end{itemize}
{{- end}}
{{range .Constraints}}{{if eq .Kind "name_domain"}}{{tex .Text}}.
{{end}}{{end}}`,
		Results: `\section{Results}

{{range .Summaries}}{{tex .Claim}} (\texttt{ {{- tex .Source}}}).
{{end}}{{range .WinRates}}{{tex .Claim}} (\texttt{ {{- tex .Source}}}).
{{end}}{{if .Findings}}
\begin{table}[h]
\centering
\begin{tabular}{ll}
\hline
Source & Value \\
\hline
{{range .Findings}}\texttt{ {{- tex .Source}}} & {{if .Stat}}{{tex .Stat}}{{else}}{{tex .Claim}}{{end}} \\
{{end}}\hline
\end{tabular}
\caption{Values reported in the experimental outputs.}
\label{tab:results}
\end{table}

Table~\ref{tab:results} summarizes these values.
{{end}}{{range .Figures}}
Figure~\ref{ {{- figlabel .Filename}}} shows {{tex (lower .SuggestedCaption)}}.
{{end}}`,
		Discussion: `\section{Discussion}

{{range .WinRates}}{{tex .Claim}}, a consistent direction of effect across the evaluated cases.
{{else}}The reported values characterize the experimental outputs without a paired comparison.
{{end}}
Claims in this manuscript are limited to values present in the experimental outputs.
`,
	},
	ModeReview: {
		Abstract: `% Abstract
This review synthesizes {{.PapersAnalyzed}} papers across {{len .Syntheses}} research domains
{{- if .Syntheses}}: {{range $i, $s := .Syntheses}}{{if $i}}, {{end}}{{tex (title $s.Domain)}}{{end}}{{end}}.
`,
		Introduction: `\section{Introduction}

{{if .Syntheses}}Methods developed in {{range $i, $s := .Syntheses}}{{if $i}}, {{end}}{{tex (title $s.Domain)}}{{end}} address related statistical problems.
This review collects their key findings and the approaches that transfer between them.
{{else}}This review surveys the literature related to the project.
{{end}}`,
		Methods: `\section{Methods}

We systematically reviewed literature across {{len .Syntheses}} domains.
Each paper was summarized at several levels of detail and the summaries were aggregated per domain.
`,
		Results: `\section{Results}
{{range .Syntheses}}
\subsection{ {{- tex (title .Domain)}}}

{{if .KeyFindings}}\begin{itemize}
{{range .KeyFindings}}\item {{tex .}}
{{end}}\end{itemize}
{{else}}No key findings were extracted for this domain.
{{end}}{{else}}
No domain syntheses are available.
{{end}}`,
		Discussion: `\section{Discussion}
{{range .Syntheses}}
{{tex .CrossFieldInsights.Paragraph}}
{{else}}
No cross-field insights are available.
{{end}}`,
	},
}
