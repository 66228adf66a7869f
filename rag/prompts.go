package rag

import "fmt"

// answerPromptTemplate instructs the model to answer strictly from the
// retrieved context block.
const answerPromptTemplate = `Answer the user's question based on the following context. Provide an accurate and helpful answer, and use only information present in the context.

Context:
%s

User question: %s

Answer:`

func buildAnswerPrompt(contextBlock, query string) string {
	return fmt.Sprintf(answerPromptTemplate, contextBlock, query)
}
