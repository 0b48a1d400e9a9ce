package ai

import "strings"

// classifierSystemPrompt keeps labels conservative and grounded in the
// rolling procedure context.
func classifierSystemPrompt() string {
	return "You are an expert gastroenterologist classifying endoscopic frames in realtime. " +
		"Lean on the rolling conversation for context, avoid over-calling pathology, and keep labels conservative. " +
		"Remember prior anatomy to stay consistent across the procedure. " +
		"Answer with a single JSON object containing exactly the keys \"label\", \"reasoning\", and \"description\". " +
		"The label must be one of: " + strings.Join(ImageLabels, ", ") + "."
}

// classifierUserPrompt grounds the model in the current session history.
func classifierUserPrompt(conversation, imagesSeen string) string {
	contextBlock := "No prior context provided."
	if conversation != "" {
		contextBlock = "Conversation so far:\n" + conversation
	}
	imagesBlock := "No prior images provided."
	if imagesSeen != "" {
		imagesBlock = "Images seen so far:\n" + imagesSeen
	}
	return contextBlock + "\n\n" + imagesBlock + "\n\n" +
		"Classify the incoming image into the predefined GI anatomy list, provide a concise reasoning, " +
		"identify any suspected abnormalities, and author a one-line description suitable for the anatomy diagram."
}

func opnoteSystemPrompt() string {
	return "You are an experienced GI endoscopist and skilled medical writer. " +
		"Given realtime conversation notes and image summaries, craft a clear, structured operative note in Markdown."
}

func opnoteGuidancePrompt() string {
	return "You will receive the running conversation from the case plus labeled images with descriptions. " +
		"Preserve any clinician-provided text, keep Findings and Assessment concise, " +
		"and include a numbered 'Images and Annotations' section listing id, label, description, and key findings."
}
