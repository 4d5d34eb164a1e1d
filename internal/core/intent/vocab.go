package intent

import "regexp"

// Vocabulary shared by the matcher triggers. Every pattern is case-insensitive
// and anchored on word boundaries.
var (
	reBulk     = regexp.MustCompile(`(?i)\b(all|every|each|multiple)\b`)
	reQuoted   = regexp.MustCompile(`["“”]([^"“”]+)["“”]`)
	reTaskNoun = regexp.MustCompile(`(?i)\b(?:sub-?)?tasks?\b|\btags?\b`)

	reCompletion   = regexp.MustCompile(`(?i)\b(complete|completed|done|finish|finished)\b`)
	reIncompletion = regexp.MustCompile(`(?i)\b(incomplete|uncomplete|uncompleted|undone|unfinished|pending|not\s+(?:complete|completed|done|finished))\b`)
	reMarkVerb     = regexp.MustCompile(`(?i)\b(mark|set|flag|make|complete|finish|check\s+off|uncheck|reopen)\b`)
	reSetVerb      = regexp.MustCompile(`(?i)\b(set|change|make|update|mark|assign|move|push|bump|raise|lower|reschedule)\b`)

	reDelete   = regexp.MustCompile(`(?i)\b(delete|remove|clear|erase|trash|purge)\b`)
	reTag      = regexp.MustCompile(`(?i)\btags?\b`)
	reSubtask  = regexp.MustCompile(`(?i)\bsub-?tasks?\b`)
	rePriority = regexp.MustCompile(`(?i)\bpriority\b`)
	reDue      = regexp.MustCompile(`(?i)\b(due|deadline)\b`)

	rePriorityBefore = regexp.MustCompile(`(?i)\b(low|medium|high)\s+priority\b`)
	rePrioritySetTo  = regexp.MustCompile(`(?i)\bpriority\b.*?(?:\bto\b|\bas\b|=)\s*(low|medium|high)\b`)
	rePriorityAfter  = regexp.MustCompile(`(?i)\bpriority\s+(?:level\s+)?(?:to\s+|of\s+|as\s+|=\s*)?(low|medium|high)\b`)

	reAddVerb    = regexp.MustCompile(`(?i)\b(add|apply|attach|put|assign)\b`)
	reRemoveVerb = regexp.MustCompile(`(?i)\b(remove|delete|untag|detach|drop|strip|clear)\b`)
	reToggleVerb = regexp.MustCompile(`(?i)\b(complete|finish|toggle|check|uncheck|mark|tick|done)\b`)
	reAddWord    = regexp.MustCompile(`(?i)\badd\b`)

	reCreateVerb  = regexp.MustCompile(`(?i)\b(create|add|make|new)\b`)
	reTasksPlural = regexp.MustCompile(`(?i)\btasks\b`)
	reFollowing   = regexp.MustCompile(`(?i)\bfollowing\b`)

	reTagsTo   = regexp.MustCompile(`(?is)\btags?\s+(.+?)\s+(?:to|for|on|onto)\s+(.+)$`)
	reTagWith  = regexp.MustCompile(`(?is)\btag\s+(.+?)\s+(?:with|as)\s+(.+)$`)
	reTagsFrom = regexp.MustCompile(`(?is)\btags?\s+(.+?)\s+(?:from|off|on)\s+(.+)$`)

	reAddSubtask = regexp.MustCompile(`(?is)\badd\s+(?:a\s+|an\s+|the\s+)?(?:new\s+)?sub-?task\s+(.+?)\s+(?:to|for|under|on|in)\s+(.+)$`)
	reSubtaskRef = regexp.MustCompile(`(?is)\bsub-?task\s+(.+?)\s+(?:in|of|on|for|from|under)\s+(.+)$`)
	reAsState    = regexp.MustCompile(`(?i)\s+as\s+(?:complete|completed|done|finished|incomplete|undone|not\s+done)\b`)

	reColonList     = regexp.MustCompile(`(?is)\b(?:create|add|make)\b[^:]*?\btasks?\b[^:]*:\s*(.+)$`)
	reFollowingList = regexp.MustCompile(`(?is)\bfollowing\s+tasks?\b\s*:?\s*(.+)$`)
	reListLine      = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+(.+?)\s*$`)
	reListMarker    = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+`)
	reCreateDue     = regexp.MustCompile(`(?i)\bdue\s+(today|tomorrow|next\s+week|next\s+month)\b`)
	reTargetPrefix  = regexp.MustCompile(`(?i)^(?:the\s+)?(?:task|todo)\s+(?:called\s+|named\s+)?`)
	reListSplit     = regexp.MustCompile(`[,;\n]+`)
	reTagSplit      = regexp.MustCompile(`[,\s]+`)
	reAndSplit      = regexp.MustCompile(`(?i)\s+and\s+`)
)
