package constant

// Prompt templates for the corrective RAG workflow. Placeholders use %s/%d via
// fmt.Sprintf; every prompt demands a JSON object so outputs go through the
// structured-output parser.

const (
	QueryAnalysisPrompt = `Analyze the following user query and provide a structured analysis.

## Query
%s

## Analysis Requirements

1. **refined_query**: Improve the query for better search results. Keep the original intent.

2. **complexity**: Determine if the query is "simple" or "complex"
   - simple: Single topic, straightforward question
   - complex: Multiple parts, requires decomposition, comparative analysis

3. **clarity_confidence**: Score 0.0-1.0 indicating how clear the query is
   - 1.0: Perfectly clear, specific, actionable
   - 0.7-0.9: Mostly clear, minor improvements possible
   - 0.5-0.7: Somewhat unclear, may need clarification
   - Below 0.5: Unclear, needs clarification

4. **is_ambiguous**: true if the query has multiple interpretations or unclear terms

5. **ambiguity_type**: If ambiguous, specify the type:
   - "multiple_interpretation": Query could mean different things
   - "missing_context": Lacks necessary context
   - "vague_term": Contains vague terms (e.g., "그거", "그것", "저것")

6. **detected_domains**: List relevant technical domains:
   - development, operations, security, infrastructure, api
   - database, frontend, backend, devops, general

## Response Format
Return a JSON object with all the above fields.`

	ClarificationPrompt = `You are a clarification specialist for a RAG chatbot.
The user's question is ambiguous and needs clarification before we can provide an accurate answer.

## User's Original Question
%s

## Ambiguity Analysis
- Ambiguity Type: %s
- Clarity Confidence: %.2f
- Detected Domains: %s

## Your Task
Generate ONE clarification question with 2-5 specific options that will help narrow down the user's intent.

## Guidelines
1. The question should be natural and conversational in Korean
2. Options should be mutually exclusive and cover the likely interpretations
3. Options should be specific enough to disambiguate the query
4. Keep options concise (under 50 characters each)

## Output Format (JSON)
{
    "clarification_question": "명확화 질문 (Korean)",
    "options": ["선택지 1", "선택지 2", "선택지 3"]
}`

	RefineQueryPrompt = `You are a query refinement specialist.
Based on the user's original question and their clarification response, create a refined, unambiguous query.

## Original Question
%s

## Clarification Question Asked
%s

## User's Response
%s

## Your Task
Create a refined query that:
1. Incorporates the user's clarification
2. Is specific and unambiguous
3. Can be used directly for document retrieval
4. Preserves the original intent while adding clarity

## Output Format (JSON)
{
    "refined_query": "refined query text"
}`

	QueryDecompositionPrompt = `You are a query decomposition specialist for a RAG chatbot.
Complex questions often need to be broken down into simpler sub-questions for effective retrieval.

## User's Question
%s

## Query Analysis
- Complexity: %s
- Detected Domains: %s

## Your Task
Decompose this complex question into 2-5 simpler sub-questions that:
1. Can each be answered independently
2. Together cover the full scope of the original question
3. Are specific enough for effective document retrieval

## Guidelines
1. Each sub-question should target a specific aspect or domain
2. Sub-questions should be self-contained
3. Order sub-questions logically (prerequisites first)
4. Identify which sub-questions can be searched in parallel
5. Provide a synthesis guide for combining answers

## Output Format (JSON)
{
    "original_intent": "brief description of user's intent",
    "sub_questions": [
        {"id": "q1", "question": "sub-question text", "target_domain": "relevant domain", "dependencies": []},
        {"id": "q2", "question": "sub-question text", "target_domain": "relevant domain", "dependencies": ["q1"]}
    ],
    "parallel_groups": [["q1"], ["q2"]],
    "synthesis_guide": "How to combine answers into a coherent response"
}`

	SubAnswerSynthesisPrompt = `You are a response synthesizer.
Combine multiple sub-answers into a coherent, comprehensive response.

## Original Question
%s

## Sub-Questions and Answers
%s

## Synthesis Guide
%s

## Your Task
1. Combine the sub-answers into a single coherent response
2. Maintain logical flow and structure
3. Remove redundancy while preserving all important information
4. Ensure the final answer fully addresses the original question

## Guidelines
- Cite sources from sub-answers
- Flag any inconsistencies between sub-answers
- Keep the response in Korean

## Output Format (JSON)
{
    "synthesized_response": "complete combined answer",
    "sources": ["source1", "source2"],
    "coverage_score": 0.85,
    "inconsistencies": []
}`

	QueryRewritePrompt = `The original search query did not return sufficiently relevant results.
Rewrite the query using the specified strategy to improve search results.

## Original Query
%s

## Rewrite Strategy
%s

## Strategy Descriptions
- **synonym_expansion**: Add synonyms and related terms to broaden the search
- **context_addition**: Add contextual keywords that clarify the query intent
- **generalization**: Make the query more general/broader if it's too specific
- **specification**: Make the query more specific if it's too vague

## Previous Attempts (avoid duplicating these)
%s

## Instructions
1. Apply the strategy to rewrite the query
2. Keep the original intent intact
3. Do NOT create a query similar to previous attempts
4. The rewritten query should be in the same language as the original

## Response Format
Return a JSON object with:
- strategy: The strategy used (string)
- rewritten_query: The new query (string)
- changes_made: Brief description of what was changed (string)`

	RelevanceEvaluationPrompt = `Evaluate the relevance of the following document to the user's query.

## User Query
%s

## Document to Evaluate
Source: %s
Content:
%s

## Evaluation Criteria

1. **relevance_score** (0.0 - 1.0):
   - 1.0: Perfectly answers the query, contains all needed information
   - 0.8-0.9: Highly relevant, addresses main aspects of the query
   - 0.6-0.8: Moderately relevant, partially addresses the query
   - 0.4-0.6: Somewhat relevant, tangentially related
   - 0.2-0.4: Low relevance, only mentions related keywords
   - 0.0-0.2: Not relevant, does not address the query

2. **relevance_level**: "high" (score >= 0.8), "medium" (0.5 <= score < 0.8), "low" (score < 0.5)

3. **reason**: Brief explanation (1-2 sentences)

## Response Format
Return a JSON object with:
- relevance_score: float (0.0-1.0)
- relevance_level: "high" | "medium" | "low"
- reason: string`

	ResponseGenerationPrompt = `Based on the provided documents, answer the user's question.

## User Question
%s

## Retrieved Documents
%s

## Instructions

1. **Answer the question** based ONLY on the information in the provided documents
2. **Cite your sources** using [1], [2], etc. format referring to document numbers
3. **Be concise** but comprehensive
4. **Use Korean** for your response
5. **Do not hallucinate** - only include information from the documents
6. If the documents don't contain enough information to answer:
   - Set has_sufficient_info to false
   - Explain what information is missing

## Response Format
Return a JSON object with:
- response: Your answer in Korean with source citations
- sources: List of source file paths or URLs used
- has_sufficient_info: Boolean indicating if documents contained sufficient information`

	QualityEvaluationPrompt = `Evaluate the quality of the generated response.

## User Query
%s

## Generated Response
%s

## Sources Used
%s

## Evaluation Criteria

1. **completeness** (0.0 - 1.0): Does the response fully answer the query?
2. **accuracy** (0.0 - 1.0): Is the information accurate based on sources?
3. **clarity** (0.0 - 1.0): Is the response clear and well-structured?
4. **confidence**: (completeness * 0.4) + (accuracy * 0.4) + (clarity * 0.2)
5. **needs_disclaimer**: true if confidence < 0.8 OR completeness < 0.6 OR accuracy < 0.7

## Response Format
Return a JSON object with:
- completeness: float
- accuracy: float
- clarity: float
- confidence: float
- needs_disclaimer: boolean`

	WebQueryOptimizationPrompt = `You are a web search query optimizer.
Transform the user's internal document query into an optimized web search query.

## Original Query
%s

## Detected Domains
%s

## Task
1. Remove internal/company-specific terms that won't work in web search
2. Add relevant context that would help find public documentation
3. Keep the core intent of the question
4. Keep the query concise (under 100 characters ideally)

## Output Format (JSON)
{
    "optimized_query": "web search optimized query",
    "search_focus": "documentation|tutorial|troubleshooting|general"
}`

	WebResultEvaluationPrompt = `You are a web search result evaluator.
Evaluate the relevance of this web search result to the user's question.

## User's Question
%s

## Web Search Result
Title: %s
URL: %s
Content: %s

## Output Format (JSON)
{
    "content_relevance": 0.0,
    "source_reliability": 0.0,
    "information_completeness": 0.0,
    "overall_score": 0.0,
    "useful_excerpt": "relevant excerpt from content",
    "should_include": true
}`
)
