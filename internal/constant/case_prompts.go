package constant

// Prompt templates for the case generation pipeline. Stages that need
// structured output instruct the model to answer with a bare JSON object;
// the pipeline strips markdown fences before unmarshalling anyway.

const StoryPrompt = `You are a crime fiction writer. Write a detective mystery story of about 800 words.
Difficulty: %s (easy = 3 suspects and obvious motives, medium = 4 suspects with conflicting alibis, hard = 5 suspects, misdirection and an unreliable witness).
The story must contain: a crime, a victim, a closed circle of suspects with names, several distinct locations where events happened, and enough physical evidence for a careful reader to identify the culprit.
Write the story only, no title, no commentary.`

const EnhanceStoryPrompt = `Rewrite the following detective story, keeping the plot identical down to every name, place and fact.
Weave in explicit clue trigger sentences: every physical clue must be anchored to one location through a concrete sentence describing what can be found there and under which circumstances.
Mark nothing with labels; the triggers must read as natural prose. Return the rewritten story only.

STORY:
%s`

const IntroPrompt = `Write a short case briefing (120-180 words) for the player who will investigate the following mystery.
Address the player as "Detective". Introduce the crime, the victim and the stakes, but reveal no clue and no suspicion ranking.
Return the briefing text only.

STORY:
%s`

const ClueExtractionPrompt = `Read the following detective story and extract its investigation structure.
Respond with a single JSON object, no markdown, matching exactly:
{
  "clues": [{"id": "clue-1", "title": "...", "description": "...", "location_id": "loc-1", "importance": "minor|important|critical"}],
  "suspects": [{"id": "suspect-1", "name": "...", "description": "...", "alibi": "...", "motive": "..."}]
}
Every clue must reference the location where it can be discovered using the location ids loc-1, loc-2, ... in order of first appearance in the story.

STORY:
%s`

const MapGenerationPrompt = `Read the following detective story and produce its map of investigable locations.
Respond with a single JSON object, no markdown, matching exactly:
{
  "title": "short case title",
  "locations": [{"id": "loc-1", "name": "...", "description": "..."}]
}
Use ids loc-1, loc-2, ... in order of first appearance. Include only locations the player can meaningfully visit. Each description is 2-3 sentences of what the place looks like when the player arrives.

STORY:
%s`

const LocationImagePrompt = `Moody noir illustration of a crime scene location: %s. %s. Cinematic lighting, desaturated palette, no people, no text.`

const MapImagePrompt = `Hand-drawn detective case map, top-down, showing these locations connected by streets: %s. Vintage paper texture, ink annotations, no text labels.`

const TagsPrompt = `Suggest 3 to 5 short lowercase genre tags for this detective story (e.g. "poison", "locked room", "small town").
Respond with a single JSON array of strings, no markdown.

STORY:
%s`

const InterrogationSystemPrompt = `You are roleplaying %s in a detective mystery. Character notes: %s. Alibi you claim: %s.
The detective is interrogating you. Stay in character, answer in 2-4 sentences, never break the fourth wall.
You know only what your character plausibly knows from the story below. You may lie where your character would lie, but physical facts stated in the story stay true.

STORY:
%s`

const LocationVisitPrompt = `The detective visits %s in the following mystery. Location notes: %s.
Describe in 3-5 sentences what the detective observes on this visit, grounded strictly in the story. If the story anchors a clue to this location, hint at it without naming it outright.

STORY:
%s`

// Fallback tags when the tag generation call fails; the pipeline treats tag
// generation as a non-fatal nicety.
var DefaultCaseTags = []string{"mystery", "detective"}
