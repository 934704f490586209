package agent

const systemPrompt = `You extract structured data from Google Search Console PDF reports written in Brazilian Portuguese.
Return only one valid JSON object, with no markdown and no commentary.
Numbers use Brazilian formatting in the text: "43.300" is 43300, "1,20%" is 1.20, "6,3" is 6.3.
Keep rows in the order they appear. Use null for values that are not present.`

const userPromptTemplate = `The text below was extracted from a Search Console PDF. It holds three tables:

1. Period overview: clicks, impressions, average CTR and average position for the current and the previous period, with the percentage change of each.
2. Top keywords by clicks: keyword, clicks, impressions, CTR (%%), average position, and the differences when shown.
3. Top pages by clicks: URL, clicks, impressions, CTR (%%), average position, and the differences when shown.

Reply with JSON in exactly this shape:

{
  "metrics": {
    "clicks":      {"current": 43300, "previous": 44000, "change": -1.59},
    "impressions": {"current": 3670000, "previous": 3450000, "change": 6.38},
    "ctr":         {"current": 1.20, "previous": 1.30, "change": -7.69},
    "position":    {"current": 6.3, "previous": 11.0, "change": 42.73}
  },
  "keywords": [
    {"keyword": "exemplo", "clicks": 10100, "impressions": 19027, "ctr": 53.1, "position": 1.2, "clicksDiff": 2269, "impressionsDiff": -2119, "positionDiff": 0.1}
  ],
  "pages": [
    {"url": "https://exemplo.com.br/", "clicks": 10794, "impressions": 34978, "ctr": 30.9, "position": 3.5, "clicksDiff": 2364, "impressionsDiff": -11262, "positionDiff": -4.7}
  ]
}

A position change is positive when the position number went down.

PDF TEXT:
%s`
