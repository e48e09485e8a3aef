// Package prompt builds the instruction document sent to the language model.
package prompt

import "strings"

// Delimiters wrapping the interpolated values. The model is asked to answer
// inside the goal/analysis pair.
const (
	CodebaseOpen  = "<codebase>"
	CodebaseClose = "</codebase>"
	GoalOpen      = "<goal>"
	GoalClose     = "</goal>"
	AnalysisOpen  = "<analysis>"
	AnalysisClose = "</analysis>"
)

const preamble = `You are an AI assistant tasked with analyzing a codebase and providing guidance for achieving a specific goal. Your role is to prepare a detailed guide that will help a developer understand the current state of the codebase and plan their approach to implementing the desired changes.

First, you will be presented with the entire codebase and a specific goal. The codebase will be enclosed in <codebase> tags, and the goal will be enclosed in <goal> tags.

`

const instructions = `

Analyze the provided codebase thoroughly. Focus on understanding the overall structure, including directories, files, and their relationships. Pay special attention to components that may be relevant to the specified goal.

Provide an overview of the codebase structure, focusing on elements that are likely to be important for achieving the goal. Include the following information:

1. A high-level description of the main directories and their purposes.
2. A list of key files that are most relevant to the goal, along with a brief description of their contents and functions.
3. Any important dependencies or relationships between files and components that are crucial for understanding the system.

Identify specific areas of the codebase that are most likely to require modifications or additions to achieve the goal. Explain why these areas are important and how they relate to the desired outcome.

Highlight any potential challenges or considerations that the developer should be aware of based on the current state of the codebase. This may include architectural constraints, coding patterns, or dependencies that could impact the implementation of the goal.

Summarize your findings and provide a suggested order of files or components to examine first when planning the implementation. Offer any additional insights that could help the developer start planning their approach.

Remember to focus solely on the current state of the codebase. Do not suggest or discuss any new files or modifications at this stage. Your task is to provide a clear understanding of the existing codebase as it relates to the specified goal.

Present your analysis and guidance in a clear, structured format using appropriate headings and bullet points where necessary. Respond in the format:

`

const closing = `

Ensure that your guidance is detailed, actionable, and directly relevant to the provided goal and codebase structure.`

// Build embeds the packaged codebase and the goal into the analysis template.
// It is a pure function: identical inputs always produce identical output.
// Both values are interpolated verbatim, the codebase once and the goal
// twice (as input context and again in the required response shape).
func Build(codebase, goal string) string {
	var b strings.Builder
	b.Grow(len(preamble) + len(instructions) + len(closing) + len(codebase) + 2*len(goal) + 128)

	b.WriteString(preamble)

	b.WriteString(CodebaseOpen + "\n")
	b.WriteString(codebase)
	b.WriteString("\n" + CodebaseClose + "\n\n")

	b.WriteString(GoalOpen + "\n")
	b.WriteString(goal)
	b.WriteString("\n" + GoalClose)

	b.WriteString(instructions)

	b.WriteString(GoalOpen + " \n")
	b.WriteString(goal)
	b.WriteString("\n" + GoalClose + "\n\n")
	b.WriteString(AnalysisOpen + "\n[ANALYSIS]\n" + AnalysisClose)

	b.WriteString(closing)
	return b.String()
}
