package safety

import "github.com/craveless/lesscoach/internal/models"

// Canned fallback responses returned instead of generated text.

// CrisisFallback is the hardcoded crisis-resource message. It is exported
// because the coach orchestrator reuses it when the safety override fires.
const CrisisFallback = `I'm really glad you reached out.

I can't support you through this alone — you deserve real help right now.

Please reach out immediately:
• Contact emergency services in your country
• Call a local crisis hotline
• Reach out to a trusted person

If you're in the US:
• Call or text 988 (Suicide & Crisis Lifeline)
• Text HOME to 741741 (Crisis Text Line)
• Call 911 for emergencies

Your safety matters most.`

const disorderedEatingFallback = `I'm really glad you said this. When eating feels out of control, strict rules can actually make things harder.

You're not broken — and this isn't a failure.

I'm here to help you reduce pressure, not add more.

If this keeps feeling overwhelming, talking to a professional could make a big difference. You deserve support that goes deeper than what I can offer.`

const medicalAdviceFallback = `I can't help with medical or nutrition advice — that's outside my scope.

What I can do is help you slow down cravings and reduce pressure around them.

For health decisions, it's important to follow your healthcare provider's guidance. They know your specific situation best.`

// safetyInstructions maps each category to the directive block spliced
// verbatim into the downstream prompt.
var safetyInstructions = map[models.MessageCategory]string{
	models.CategoryCrisis: `CRISIS MODE ACTIVE:
- User has expressed crisis-level distress
- DO NOT provide coaching or behavior advice
- Focus entirely on safety and getting help
- Be calm, direct, and compassionate
- Encourage immediate professional support
- No goal talk, no streak talk, no habit advice`,

	models.CategoryDisorderedEating: `DISORDERED EATING SENSITIVITY (MAXIMUM PRIORITY):
- CRITICAL: NO restriction language of any kind
- NO "just resist" or "try harder" advice
- NO calorie/portion/macro talk
- NO food rules or "should/shouldn't eat X"
- NO language about control, willpower, or discipline
- Emphasize self-compassion and safety above all
- Validate without reinforcing harmful patterns
- Strongly suggest professional support
- Focus entirely on reducing pressure
- Never frame eating as success/failure
- NEVER mention streaks, progress, or goals
- Remove all performance expectations`,

	models.CategoryMedicalAdvice: `MEDICAL BOUNDARY:
- This is a medical advice request - REFUSE politely
- Redirect to healthcare provider
- Explain you're a habit coach, not medical professional
- Do not give any specific dietary instructions
- Do not suggest foods for medical conditions
- Keep response warm but firm`,

	models.CategoryMentalDistress: `MENTAL DISTRESS MODE (MAXIMUM SAFETY):
- User is experiencing shame/anxiety/hopelessness
- Validate emotion FIRST - nothing else matters
- ZERO pressure, ZERO goals, ZERO streaks
- Remove all performance language
- Focus entirely on grounding and compassion
- Keep responses very short (1-2 sentences)
- Offer optional, tiny steps only if they ask
- Never imply they should "do better"
- Suggest professional help if distress is intense
- Frame everything as "you're safe, nothing is broken"`,

	models.CategoryHealthCondition: `HEALTH CONDITION SENSITIVITY:
- User mentioned diabetes/prediabetes/doctor
- Stay calm and non-directive
- Acknowledge health makes cravings harder
- Defer to healthcare provider for medical decisions
- Focus on stress reduction and awareness
- No specific food recommendations
- No medical claims`,

	models.CategorySlipOvereating: `SLIP/OVEREATING RESPONSE (CRITICAL - NO STREAK TALK):
- User mentioned giving in or failing
- NEVER mention streaks, progress lost, or "starting over"
- NO punishment language whatsoever
- NO "you broke your streak" or "back to zero" talk
- Use neutral, learning-focused language ONLY
- Frame as: "This gave us information" not "you failed"
- Validate it's completely human and normal
- Focus on what triggered it (curiosity, not judgment)
- Ask: "What do you think led to this?" not "Why did you do it?"
- Keep it extremely light and forward-looking
- Emphasize: One moment doesn't define anything
- NO goals talk, NO "get back on track" language`,

	models.CategoryNormalCraving: `NORMAL CRAVING SUPPORT:
- Standard craving coaching mode
- Use 4-step pattern: Acknowledge → Ground → Guide → Follow up
- Keep it short and practical
- Offer one technique at a time
- Validate the craving as normal
- No judgment, just support`,

	models.CategoryGeneralSupport: `GENERAL SUPPORT MODE:
- Provide calm, empathetic responses
- Keep it conversational and natural
- Validate feelings
- Offer optional suggestions
- Stay within scope (habit awareness, not medical advice)`,
}

// InstructionsFor returns the canned safety-instruction block for a category.
func InstructionsFor(category models.MessageCategory) string {
	return safetyInstructions[category]
}
