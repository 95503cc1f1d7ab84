package workflow

import "fmt"

const intentSystemPrompt = `You are an intent classification engine for ASTU Route AI.

Your task is to classify a user query into exactly ONE of the following intents:

- NAVIGATION: The user wants directions or routes inside ASTU campus.
- NEARBY_SERVICE: The user wants nearby city services relative to ASTU (mosque, salon, pharmacy, etc).
- UNIVERSITY_INFO: The user wants factual information about ASTU (rules, offices, processes, locations).
- MIXED: The user wants BOTH navigation AND information.

Rules:
- Do NOT explain your decision.
- Do NOT answer the user.
- Output ONLY valid JSON.
`

const intentUserTemplate = `User query:
%q

Output as JSON with this exact schema:
{
  "intent": "NAVIGATION"
}
`

func intentUserPrompt(query string) string {
	return fmt.Sprintf(intentUserTemplate, query)
}
