package quote

import "melify/pkg/domain"

var DefaultCorpus = []Entry{
	{"Gratitude turns what we have into enough.", "Anonymous", "gratitude", "Noticing what is already good makes room for more of it."},
	{"Keep your face always toward the sunshine, and shadows will fall behind you.", "Walt Whitman", "positivity", "Where you look shapes what you feel."},
	{"Joy is not in things; it is in us.", "Richard Wagner", "joy", "Happiness grows from inside rather than from circumstances."},
	{"It does not matter how slowly you go as long as you do not stop.", "Confucius", "motivation", "Progress counts even when it is small."},
	{"Our greatest glory is not in never falling, but in rising every time we fall.", "Confucius", "resilience", "Setbacks are part of the path, not the end of it."},
	{"The present moment is the only time over which we have dominion.", "Thich Nhat Hanh", "mindfulness", "Returning to now can quiet a racing mind."},
	{"Peace comes from within. Do not seek it without.", "Buddha", "peace", "Calm is something you can practice, not just find."},
	{"Within you, there is a stillness and a sanctuary to which you can retreat at any time.", "Hermann Hesse", "calm", "A few slow breaths can bring you back to that place."},
	{"Life is like riding a bicycle. To keep your balance you must keep moving.", "Albert Einstein", "balance", "Balance is an ongoing practice rather than a fixed state."},
	{"Knowing yourself is the beginning of all wisdom.", "Aristotle", "wisdom", "Journaling is one way of getting to know yourself."},
	{"What we achieve inwardly will change outer reality.", "Plutarch", "growth", "Inner work shows up in everyday life."},
	{"The way to get started is to quit talking and begin doing.", "Walt Disney", "action", "Energy is best spent on one clear next step."},
	{"Success is not final, failure is not fatal: it is the courage to continue that counts.", "Winston Churchill", "success", "Keep building on what is working."},
	{"Almost everything will work again if you unplug it for a few minutes, including you.", "Anne Lamott", "rest", "Rest is part of doing well, not a break from it."},
	{"Self-care is not selfish. You cannot serve from an empty vessel.", "Eleanor Brown", "self-care", "Looking after yourself keeps you able to show up for others."},
}

var moodReflections = map[domain.Mood][]string{
	domain.MoodHappy: {
		"Savor this feeling and notice what helped create it.",
		"Consider sharing some of this joy with someone today.",
	},
	domain.MoodSad: {
		"It is okay to feel this way; be gentle with yourself.",
		"Small steps still move you forward.",
	},
	domain.MoodAnxious: {
		"Try grounding yourself in what you can see and hear right now.",
		"One slow breath at a time is enough.",
	},
	domain.MoodStressed: {
		"Pick one thing you can set down for today.",
		"You do not have to solve everything at once.",
	},
	domain.MoodNeutral: {
		"Steady days are a good time to reflect.",
		"Notice one small thing you appreciate today.",
	},
	domain.MoodEnergetic: {
		"Channel this energy into something that matters to you.",
		"Use this momentum for one meaningful step.",
	},
	domain.MoodTired: {
		"Rest is productive too.",
		"Give yourself permission to slow down.",
	},
	domain.MoodExcited: {
		"Let this excitement carry you into action.",
		"Enjoy the anticipation and stay present with it.",
	},
}

var defaultReflections = []string{
	"Take a moment to reflect on what this means for you today.",
}
