package app

// TermsText is shown before the first submission of every session.
const TermsText = "VIKAL generates study material with AI and answers can be wrong, so verify important facts. " +
	"Free accounts include 3 requests. Your recent questions are kept on this device until you sign out."
