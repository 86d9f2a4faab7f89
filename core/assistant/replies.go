package assistant

import "strings"

type cannedReply struct {
	keywords []string
	reply    string
}

// pickReply returns the reply of the first rule with a keyword contained in message.
func pickReply(rules []cannedReply, def, message string) string {
	message = strings.ToLower(message)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(message, kw) {
				return rule.reply
			}
		}
	}
	return def
}

var chatReplies = []cannedReply{
	{
		keywords: []string{"time", "schedule", "plan"},
		reply: `Here's a quick routine for better time management:
• Prioritize 3 to 5 key tasks daily.
• Work in focused 25 to 30 minute sessions with 5-minute breaks.
• Group similar tasks together (emails, studying, errands).
• Review your day at night and adjust for tomorrow.`,
	},
	{
		keywords: []string{"stress", "overwhelm", "anxiety"},
		reply: `Try this quick stress reset:
• Pause for a deep breath: in for 4s, hold for 4s, out for 6s.
• Write down what's overwhelming you.
• Break tasks into smaller chunks.
• Take a short walk, stretch, or listen to music.`,
	},
	{
		keywords: []string{"study", "focus", "exam"},
		reply: `Study smarter with this routine:
• Use the Pomodoro method (25 min focus, 5 min break).
• Eliminate distractions: silence notifications and tidy your workspace.
• Summarize what you learn every hour.
• Review key points before bed for better retention.`,
	},
	{
		keywords: []string{"motivation", "procrastinate"},
		reply: `Feeling stuck? Here's a quick boost:
• Start with one small task; momentum beats motivation.
• Reward yourself after finishing something.
• Visualize the relief you'll feel once it's done.
• Keep it simple: progress over perfection.`,
	},
}

const chatDefaultReply = `Here's a quick reset plan:
• Identify what's most important right now.
• Break it into steps and set one immediate goal.
• Focus on just that step for 20 to 30 minutes.
• Take a mindful pause, then continue with renewed focus.`

var assignmentReplies = []cannedReply{
	{
		keywords: []string{"how", "start", "begin"},
		reply: `Here's a structured way to get started:
1. Understand your assignment's requirements: read the prompt carefully.
2. Break the task into smaller milestones (research, outline, draft, review).
3. Set clear goals for each session and focus on progress, not perfection.
4. Begin with brainstorming ideas or key points, then expand gradually.

Getting started is the hardest part. Once you begin, momentum builds!`,
	},
	{
		keywords: []string{"time", "schedule", "late"},
		reply: `Time management tips:
- Break your study time into small, focused blocks (eg. 45 min of work and a 10 min break).
- Create a simple timeline and prioritize tasks by deadline and importance.
- Avoid multitasking; finish one section at a time.
- If you feel behind, start with quick wins to build confidence.`,
	},
	{
		keywords: []string{"research", "sources", "topic"},
		reply: `For effective research:
- Start with credible sources like Google Scholar, academic journals or textbooks.
- Identify the key words of your topic and explore recent studies.
- Take short notes summarizing what each source contributes.
- Keep track of citations for your references section.`,
	},
	{
		keywords: []string{"stress", "overwhelm", "tired"},
		reply: `It's okay to feel overwhelmed, assignments can be demanding!
- Take a short break, hydrate and stretch.
- Refocus by picking one small, achievable task to restart your momentum.
- Every line you write is a step forward.
- Keep a calm pace and celebrate small wins!`,
	},
	{
		keywords: []string{"write", "draft", "paragraph"},
		reply: `Writing tips for assignments:
- Start with a clear outline: introduction, body, conclusion.
- Each paragraph should express one main idea supported by evidence.
- After drafting, review for clarity and logical flow.
- Keep your tone formal and concise, and avoid repetition.
- Don't aim for perfection on the first draft; refine later!`,
	},
	{
		keywords: []string{"explain", "understand", "concept"},
		reply: `To better understand complex topics:
- Break the concept into smaller parts and rephrase them in your own words.
- Watch short explanatory videos or read simple summaries first.
- Once you grasp the basics, revisit your notes or textbook for details.
- Teaching the idea to a friend (or to yourself) solidifies understanding.`,
	},
}

const assignmentDefaultReply = `Here's a balanced plan for your assignment:

1. **Understand the goal:** what exactly is being asked? Break it into parts.
2. **Plan your approach:** outline what needs to be researched, written or solved.
3. **Gather resources:** use reliable references or notes to back up your work.
4. **Work in phases:** focus on steady progress rather than doing it all at once.
5. **Review and refine:** re-read your work for clarity, structure and accuracy.

It's okay not to have all the answers immediately. Stay curious, stay organized and trust your ability to figure things out!`
