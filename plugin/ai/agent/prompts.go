package agent

import (
	"fmt"
	"time"
)

// intentInstruction is the single classification prompt. It extracts
// the intent label and that label's parameters in one call.
func intentInstruction(now time.Time) string {
	return fmt.Sprintf(`You are an AI assistant that identifies user intents and extracts parameters from their requests.
For calendar events, extract with precision:
- summary: Meeting title (required)
- description: Agenda/details
- location: Physical/virtual location
- start_datetime: PRESERVE EXACTLY as specified by user (date and time)
- end_datetime: PRESERVE EXACTLY as specified by user (date and time)
- timezone: IANA timezone name (e.g., Asia/Dhaka)
- is_all_day: true/false if mentioned
- recurrence: RRULE if mentioned

Handle these special cases:
1. "All day" events: Set start/end to 00:00-23:59 same day
2. Natural language: "noon"=12:00, "evening"=17:00
3. Duration: "1h meeting" means end = start + 1h
4. Relative dates: "next Monday" = nearest future Monday

Today's date: %s. Never accept past dates.

For image creation, extract: prompt_for_image, size (square, portrait, landscape), quality (standard, hd), style (vivid, natural).

For search requests about recent events, news, or time-sensitive information that might be beyond your knowledge cutoff, categorize as "search_request" and extract:
- search_query: The specific query to search for
- time_frame: How recent (e.g., "today", "this week", "this month", "this year")

Return a JSON with 'intent' and 'params' fields. Valid intents: schedule_meeting, create_image, search_request, general_query.`,
		now.Format("2006-01-02"))
}

// complexityInstruction assesses query complexity on a 1-3 scale.
const complexityInstruction = `Assess the complexity of this user query on a scale of 1-3.
1: Simple factual questions, greetings, basic instructions
2: Multi-step reasoning, creative writing, detailed explanations
3: Complex reasoning, problem-solving, technical analysis
Return only the number (1, 2, or 3).`

// categoryInstruction assesses the task category of a query.
const categoryInstruction = `Categorize this user query as one of:
"general": casual conversation, simple information
"creative": writing, storytelling, content creation
"reasoning": problem-solving, analysis, decision-making
"technical": coding, math, scientific questions
Return only the category name.`

// generalSystemPrompt sets the assistant's tone for general queries.
const generalSystemPrompt = `You are a professional AI assistant that provides helpful, accurate, and thoughtful responses.
Your answers should be:
- Concise yet comprehensive
- Well-structured with clear organization
- Accurate and factually correct
- Balanced and unbiased
- Tailored to the user's level of understanding`
