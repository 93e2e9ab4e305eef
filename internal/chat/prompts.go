package chat

import "fmt"

// innovationFormURL is where change requests and unresolved issues are
// routed for follow-up.
const innovationFormURL = "https://www.jotform.com/form/250841782712054"

const categoryMenu = `I'm here to help! To provide you with the best assistance, please let me know what type of request this is:

**Question** - I need information or guidance
**Change** - I want to suggest an improvement or new feature
**Issue** - Something isn't working as expected
**Problem** - I'm experiencing a technical difficulty

Please type one of these options: **Question**, **Change**, **Issue**, or **Problem**`

const welcomeMessage = "Welcome to MAGnus Knowledge Bot!\n\n" + categoryMenu

const questionPrompt = "Perfect! What would you like to know? Please ask your question and I'll search through our company documents to find the answer."

const changeResponse = `That's fantastic! We love hearing improvement ideas from our team.

To submit your change request or suggestion, please use our **Innovation Request Form**:

**[Submit Innovation Request](` + innovationFormURL + `)**

This form ensures your idea gets to the right people and receives proper consideration. Thank you for helping us improve!`

const issuePrompt = "I understand you're experiencing an issue. Please describe what's happening in detail, and I'll search our documentation to help resolve it."

const problemPrompt = "I'm here to help with your problem. Please explain what's going wrong, and I'll look through our resources to find a solution."

const clarifyResponse = `I didn't quite catch that. Please choose one of these options:

- Type **Question** if you need information
- Type **Change** if you want to suggest an improvement
- Type **Issue** if something isn't working
- Type **Problem** if you're experiencing difficulties`

const gratitudeResponse = "You're welcome! I'm glad I could help.\n\nStarting a fresh conversation for you..."

// notFoundPhrase is the canned sentence the system prompt instructs the
// model to use when the documents lack an answer. Follow-up wording keys
// off its presence in the reply.
const notFoundPhrase = "cannot find that information"

// gratitudeIndicators end a resolved conversation when present in the
// user's message.
var gratitudeIndicators = []string{
	"thank you", "thanks", "sorted", "solved", "fixed", "resolved",
	"perfect", "great", "awesome", "excellent", "done", "good",
	"helpful", "appreciate",
}

// systemPrompt builds the restricted system message. The assistant must
// answer only from the supplied document context.
func systemPrompt(knowledgeContext string) string {
	contextSection := "You don't currently have access to any company documents."
	if knowledgeContext != "" {
		contextSection = "COMPANY KNOWLEDGE BASE:\n" + knowledgeContext
	}
	return fmt.Sprintf(`You are a company knowledge base assistant. You ONLY provide information that can be found in the company documents provided to you.

%s

IMPORTANT RESTRICTIONS:
1. ONLY answer questions using information directly found in the company documents above
2. If the answer is not in the company documents, respond with: "I cannot find that information in our company documents. Please contact your manager or HR for assistance with this question."
3. Do NOT provide general advice, external information, or assumptions
4. Do NOT make up information or provide answers based on general knowledge
5. Always cite which specific document contains the information you're referencing
6. If a question is partially covered in the documents, only answer the parts that are documented
7. The documents are organized by priority - higher priority documents contain more essential information

Your role is to be a reliable source of company-specific information only.`, contextSection)
}

// followUp is appended after an issue or problem answer, pointing at the
// innovation form when the documents did not cover the request.
func followUp(category string, found bool) string {
	if found {
		return fmt.Sprintf("\n\n---\n\nDid this information help resolve your %s? If not, you can submit an **[Innovation Request](%s)** to get additional support.", category, innovationFormURL)
	}
	return fmt.Sprintf("\n\n---\n\nSince I couldn't find specific information about your %s, I recommend submitting an **[Innovation Request](%s)** to get proper support from our team.", category, innovationFormURL)
}
