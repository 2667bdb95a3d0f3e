package llm

import "fmt"

// SystemPrompt is the default system prompt for documentation Q&A.
const SystemPrompt = `You are an expert assistant for the Hulo programming language.
Answer questions using only the provided documentation context.

Guidelines:
1. Answer based only on the provided context.
2. If the context does not contain enough information, say so.
3. Provide clear, concise explanations.
4. Include code examples when relevant.

Always respond in the same language as the user's question.`

// userPrompt assembles the context and query into the single user-turn
// prompt shared by every provider, so switching providers mid-chain never
// changes what the model sees.
func userPrompt(req Request) string {
	return fmt.Sprintf(`Based on the following documentation context, answer the user's question.

Context:
%s

Question: %s

Answer:`, req.Context, req.Query)
}
