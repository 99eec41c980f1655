package gemini

// Prompt templates. Structured prompts instruct the model to answer as
// JSON matching the domain result types' field names.

const analysisPrompt = `You are a horticulture expert. Analyze the attached seed packet photo
and extract what it says about the plant. Respond with JSON only, using this shape:
{"plant_name": string, "species": string, "sowing_season": string,
 "days_to_harvest": number, "care_highlights": [string], "raw_summary": string}.
If a field is not on the packet, omit it. plant_name is required.`

const guidePromptFmt = `You are a horticulture expert. Write a practical, step-by-step growing
guide for %q, from sowing to harvest. Respond with JSON only, using this shape:
{"plant_name": string, "steps": [{"title": string, "description": string, "day_offset": number}]}.
Order steps chronologically; day_offset counts days since sowing.`

const researchPromptFmt = `You are a botanical researcher. Produce a thorough research summary
for %q: origin, growing conditions, common problems, companion plants and
culinary or ornamental uses. Respond with JSON only, using this shape:
{"plant_name": string, "summary": string, "sources": [string]}.`

const characterPromptFmt = `Draw a friendly cartoon mascot character for the plant %q and invent
a short playful persona for it. Include the character image in your response,
plus one short paragraph of text describing the persona.`

const characterFromImagePrompt = `Look at the attached seed packet photo and draw a friendly cartoon
mascot character for the plant on it. Include the character image in your
response, plus one short paragraph of text describing the persona.`

const diaryTextPromptFmt = `You write a whimsical garden diary. Write today's entry, dated %s,
about %s. Keep it warm and observational, three to five sentences.
Respond with the entry text only, no headings.`

const diaryImagePromptFmt = `Draw a soft watercolor illustration for this garden diary entry
dated %s. Include the image in your response.

Entry:
%s`
