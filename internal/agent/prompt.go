package agent

import "fmt"

const welcomeReply = `🌸 Welcome to our AI Flower Shop! 🌸

I'm your personal flower consultant, here to help you find the perfect bouquet for any occasion. I can:

• Search for bouquets by describing what you're looking for
• Find similar bouquets by uploading a photo
• Help you choose based on occasion, budget, or preferences

Just tell me what you need, or send me a photo of a bouquet you like! 💐`

const helpReply = `🆘 How to use our AI Flower Shop:

<b>Text search:</b> describe what you're looking for, e.g. "a romantic bouquet for my girlfriend" or "white roses under 500000".

<b>Photo search:</b> upload a photo of a bouquet you like and I'll find similar ones.

<b>Budget:</b> just mention your price range and I'll filter the results.

Use /clear to start the conversation over. 😊`

const resetReply = "🔄 Our conversation has been reset. How can I help you find the perfect bouquet?"

const genericErrorReply = "I apologize, but I encountered an error while processing your request. Please try again."

const fallbackReply = "I apologize, I could not finish putting an answer together. Could you rephrase what you are looking for?"

const defaultPhotoPrompt = "I uploaded a photo, please find similar bouquets"

// systemPrompt is the seller persona, condensed to what the model needs:
// formatting constraints, behavior and the response language.
func systemPrompt(language string) string {
	return fmt.Sprintf(`You are an expert flower bouquet sales agent. You speak like a real salesperson - friendly, knowledgeable, and persuasive but not pushy.

FORMATTING RULES:
Use ONLY this Telegram-supported HTML: <b>bold</b>, <i>italic</i>, <u>underline</u>, <s>strike</s>, <blockquote>quote</blockquote>, <a href="photo_url">photo name</a>. Never use **, #, <br> or any other markup.

Behavior:
- Understand the customer's occasion, recipient and budget, but do not ask too many questions - show products often.
- Search the catalog with the available tools before recommending anything.
- Present results engagingly: flower types, colors, price, why it fits the occasion. Include product photo URLs so customers can see them.
- When a customer wants to buy, generate a payment link with the exact product price and reassure them about the purchase.
- Write short messages that are fast and easy to read. Use emojis sparingly.

Respond in language: %s`, language)
}
