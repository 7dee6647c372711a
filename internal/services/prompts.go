package services

import (
	"fmt"
	"strings"

	"github.com/rahul4469/cro-analyzer/internal/llm"
	"github.com/rahul4469/cro-analyzer/internal/models"
)

// Output budgets per call.
const (
	categoryMaxTokens = 3000
	overallMaxTokens  = 2000
	trustMaxTokens    = 4000
	copyMaxTokens     = 3000
	overviewMaxTokens = 2000
	chatMaxTokens     = 300
)

type categorySpec struct {
	Title       string
	Description string
	Factors     []string
}

// categorySpecs drives the prompt for each category. Every category in
// models.AllCategories has an entry.
var categorySpecs = map[models.Category]categorySpec{
	models.CategoryOnPage: {
		Title:       "On-page Optimization",
		Description: "how well individual page elements are tuned for search",
		Factors: []string{
			"titleTagOptimization", "metaDescriptions", "headerTagStructure",
			"keywordOptimization", "urlStructure", "imageOptimization",
		},
	},
	models.CategoryUserExperience: {
		Title:       "User Experience and Engagement",
		Description: "how the page keeps visitors engaged and moving toward conversion",
		Factors: []string{
			"mobileResponsiveness", "navigationUsability", "readability",
			"callToActionEffectiveness", "visualHierarchy", "engagementSignals",
		},
	},
	models.CategoryContentQuality: {
		Title:       "Content Quality",
		Description: "relevance, depth and credibility of the written content",
		Factors: []string{
			"contentRelevance", "contentDepth", "originality",
			"contentFreshness", "expertiseAndAuthority", "multimediaUsage",
		},
	},
	models.CategoryLinks: {
		Title:       "Link Optimization",
		Description: "internal and external linking practices",
		Factors: []string{
			"internalLinking", "anchorTextOptimization", "externalLinkQuality",
			"brokenLinks", "linkEquityDistribution",
		},
	},
	models.CategoryTechnicalSEO: {
		Title:       "Technical SEO",
		Description: "crawlability, indexing and security signals",
		Factors: []string{
			"crawlability", "xmlSitemap", "robotsTxt",
			"canonicalization", "httpsSecurity", "structuredData",
		},
	},
	models.CategoryAdvancedOnPage: {
		Title:       "Advanced On-page Techniques",
		Description: "rich results and semantic optimization",
		Factors: []string{
			"schemaMarkup", "featuredSnippetOptimization", "semanticSEO",
			"internationalSEO", "voiceSearchOptimization",
		},
	},
	models.CategoryPerformanceArchi: {
		Title:       "Technical Performance and Architecture",
		Description: "speed, rendering and site structure",
		Factors: []string{
			"coreWebVitals", "siteArchitecture", "serverResponseTime",
			"resourceOptimization", "javascriptRendering", "cachingStrategy",
		},
	},
}

// factorFields is the FactorRecord shape requested for every factor.
var factorFields = []struct{ Name, Type string }{
	{"score", "number (0-100)"},
	{"analysis", "string"},
	{"recommendations", "[string]"},
	{"currentImplementation", "string"},
	{"specificExamples", "[string]"},
	{"industryComparison", "string"},
	{"impactAssessment", "string"},
	{"implementationPriority", "\"High\" | \"Medium\" | \"Low\""},
	{"potentialChallenges", "string"},
}

// section describes one object in a section analyzer's requested output.
type section struct {
	Key    string
	Fields []string // "name: type"
}

var trustSections = []section{
	{"documentStructure", []string{"semanticHTML: boolean", "headingStructure: boolean"}},
	{"contentElements", []string{"valueProposition: boolean", "structuredData: boolean", "trustElements: boolean"}},
	{"navigation", []string{"clearStructure: boolean", "searchFunctionality: boolean", "footerLinks: boolean"}},
	{"forms", []string{"count: number", "validationAttributes: boolean", "clearLabels: boolean", "securityIndicators: boolean"}},
	{"ctaElements", []string{"count: number", "actionOrientedText: boolean", "strategicPlacement: boolean"}},
	{"socialProof", []string{"testimonials: boolean", "socialMediaIntegration: boolean", "customerReferences: boolean"}},
	{"trustSignals", []string{"securityBadges: boolean", "certifications: boolean", "affiliations: boolean"}},
	{"credibilityIndicators", []string{"aboutSection: boolean", "companyHistory: boolean", "professionalAccreditations: boolean"}},
	{"accessibilityUsability", []string{"ariaAttributes: boolean", "imageAltText: boolean", "formLabeling: boolean"}},
	{"mobileOptimization", []string{"responsiveDesign: boolean"}},
	{"externalTrustResources", []string{"reviewPlatforms: boolean", "externalValidation: boolean"}},
	{"legalCompliance", []string{"cookieConsent: boolean", "privacyPolicy: boolean", "termsOfService: boolean"}},
	{"contactSupport", []string{"contactDetails: boolean", "liveChat: boolean", "faqSection: boolean"}},
	{"valueProposition", []string{"clearBenefits: boolean", "uniqueSellingPoints: boolean"}},
	{"riskReduction", []string{"guarantees: boolean", "clearPricing: boolean", "shippingInfo: boolean"}},
}

var copySections = []section{
	{"keywordsUsage", []string{"primaryKeywordUsage: boolean", "secondaryKeywordUsage: boolean", "keywordDensity: string"}},
	{"contentStructure", []string{"properHeadingHierarchy: boolean", "paragraphLength: string", "useOfLists: boolean"}},
	{"contentQuality", []string{"depth: string", "originality: string"}},
	{"userIntent", []string{"alignmentWithIntent: boolean", "addressingUserNeeds: boolean"}},
	{"callToAction", []string{"presence: boolean", "clarity: boolean", "effectiveness: string"}},
	{"copywritingFramework", []string{"identifiedFramework: string", "effectiveImplementation: boolean"}},
	{"clearCompellingMessage", []string{"coreIdeaCommunicated: boolean", "valuePropositionPresent: boolean"}},
	{"strongHeadline", []string{"attentionGrabbing: boolean", "keywordInclusion: boolean"}},
	{"audienceUnderstanding", []string{"targetAudienceClarity: boolean", "contentRelevance: string"}},
	{"benefitsFocusedCopy", []string{"benefitsHighlighted: boolean", "featureToBenefitRatio: string"}},
	{"readabilityAndScannability", []string{"readabilityScore: string", "useOfSubheadings: boolean", "bulletPoints: boolean"}},
	{"emotionalAppeal", []string{"useOfEmotionalTriggers: boolean", "storytellingElements: boolean"}},
	{"uniqueSellingProposition", []string{"clearUSP: boolean", "uspProminent: boolean"}},
	{"grammarAndSpelling", []string{"errorFree: boolean", "consistentStyle: boolean"}},
	{"storytellingElements", []string{"presenceOfNarrative: boolean", "effectiveUseOfStories: boolean"}},
	{"toneAndVoice", []string{"consistentTone: boolean", "brandAlignment: boolean"}},
}

// overviewGroup is one concurrently analyzed set of overview aspects.
type overviewGroup struct {
	Name    string
	Aspects []string
}

var overviewGroups = []overviewGroup{
	{"Design and Copy", []string{"Design", "Copy"}},
	{"UX and CTA", []string{"User Experience (UX)", "Call to Action (CTA)"}},
	{"SEO", []string{"SEO - On-page optimization", "SEO - Technical aspects", "SEO - Content quality"}},
	{"Mobile and Performance", []string{"Mobile responsiveness", "Performance"}},
	{"Trust", []string{"Trust and Credibility"}},
}

const (
	seoSystemPrompt      = "You are an SEO expert analyzing websites for search engine optimization factors. Respond with a single valid JSON object and nothing else."
	trustSystemPrompt    = "You are a CRO expert analyzing websites for trust and conversion factors. Your analysis should be detailed, critical, and actionable."
	copySystemPrompt     = "You are a copy analysis expert analyzing websites for content effectiveness."
	overviewSystemPrompt = "You are a web design and marketing expert analyzing websites. Provide your analysis in valid JSON format."
	chatSystemPrompt     = "You are a CRO expert assistant. Analyze the provided website content and answer user questions based solely on the information present in the HTML content. Do not make assumptions or provide general advice not directly related to the content. If asked about something not present in the HTML, clearly state that the information is not available in the provided content. Keep responses concise and directly related to the user's question."
)

// Prompts builds every request the analyzers send. Page content embedded in
// a prompt is cut to MaxChars bytes.
type Prompts struct {
	MaxChars int
}

func (p Prompts) clip(s string) string { return truncate(s, p.MaxChars) }

// Category asks for the factor mapping of one category.
func (p Prompts) Category(c models.Category, html, sitemap string) llm.Request {
	spec := categorySpecs[c]
	if sitemap == "" {
		sitemap = models.SitemapNotFound
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following webpage HTML content and sitemap for %s: %s.\n\n", spec.Title, spec.Description)
	fmt.Fprintf(&b, "HTML Content:\n%s\n\nSitemap Content:\n%s\n\n", p.clip(html), p.clip(sitemap))
	b.WriteString("Provide a detailed, unbiased analysis as a single JSON object with exactly this structure:\n")
	fmt.Fprintf(&b, "{\n  %q: {\n", string(c))
	for i, f := range spec.Factors {
		fmt.Fprintf(&b, "    %q: {\n", f)
		for j, field := range factorFields {
			sep := ","
			if j == len(factorFields)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "      %q: %s%s\n", field.Name, field.Type, sep)
		}
		if i == len(spec.Factors)-1 {
			b.WriteString("    }\n")
		} else {
			b.WriteString("    },\n")
		}
	}
	b.WriteString("  }\n}\n\n")
	b.WriteString(`For each factor:
1. Score the current implementation from 0 to 100 based on SEO best practices.
2. Describe what the page currently does, quoting specific examples from the content.
3. Compare against industry standards and assess the impact of improving it.
4. Give specific, actionable recommendations and name the challenges in applying them.
Be critical and honest. Return only the JSON object, without markdown fences.`)

	return llm.Request{
		Messages:  []llm.Message{llm.System(seoSystemPrompt), llm.User(b.String())},
		MaxTokens: categoryMaxTokens,
	}
}

// Overall asks for the narrative summary of the combined category results.
func (p Prompts) Overall(combined []byte) llm.Request {
	prompt := fmt.Sprintf(`Based on the following SEO analysis results for each category, provide an overall analysis and a prioritized list of recommendations:

%s

Respond with a single JSON object with exactly this structure:
{
  "overallAnalysis": string,
  "overallRecommendations": [
    {
      "recommendation": string,
      "priority": "High" | "Medium" | "Low",
      "impact": "High" | "Medium" | "Low",
      "effort": "High" | "Medium" | "Low"
    }
  ]
}

Summarize the key findings across all categories, and order the recommendations so the ones with the biggest SEO impact come first. Categories that report an error could not be analyzed; do not invent findings for them.`, p.clip(string(combined)))

	return llm.Request{
		Messages:  []llm.Message{llm.System(seoSystemPrompt), llm.User(prompt)},
		MaxTokens: overallMaxTokens,
	}
}

// Trust asks for the trust and conversion factors of the raw HTML.
func (p Prompts) Trust(html string) llm.Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Critically analyze the following webpage HTML content for trust and conversion factors:\n%s\n\n", p.clip(html))
	b.WriteString("Provide a detailed, unbiased analysis in JSON format with the following structure:\n")
	writeSections(&b, trustSections)
	b.WriteString(`
Guidelines:
1. For boolean fields, only mark as true if the feature is properly implemented and effective.
2. In the 'analysis' fields, provide detailed explanations, including specific examples from the HTML content.
3. Ensure that each 'recommendations' array contains at least 2-3 specific, actionable suggestions.
4. Pay special attention to Privacy Policy and Terms of Service pages, contact information and customer support features.

Ensure your response is thorough, critical, and in valid JSON format.`)

	return llm.Request{
		Messages:  []llm.Message{llm.System(trustSystemPrompt), llm.User(b.String())},
		MaxTokens: trustMaxTokens,
	}
}

// Copy asks for the copywriting factors of the extracted page text.
func (p Prompts) Copy(text string) llm.Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Critically analyze the following webpage content for copy and content factors:\n%s\n\n", p.clip(text))
	b.WriteString("Provide a detailed, unbiased analysis in JSON format with the following structure:\n")
	writeSections(&b, copySections)
	b.WriteString(`
Identify the primary copywriting framework used (e.g., AIDA, PAS, FAB) and how well it is executed.
Analyze each call to action separately, including its wording and placement.
Identify specific emotional triggers and storytelling elements.

Your goal is to provide a comprehensive, actionable assessment. Be thorough, critical, and ensure your response is in valid JSON format.`)

	return llm.Request{
		Messages:  []llm.Message{llm.System(copySystemPrompt), llm.User(b.String())},
		MaxTokens: copyMaxTokens,
	}
}

// Overview asks for strengths, weaknesses and recommendations per aspect.
func (p Prompts) Overview(aspects []string, text string) llm.Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following webpage content critically and honestly for the %s aspects of web design, user experience, and marketing effectiveness:\n%s\n\n",
		strings.Join(aspects, ", "), p.clip(text))
	b.WriteString("Provide a detailed, unbiased analysis in JSON format with the following structure:\n{\n")
	for i, a := range aspects {
		sep := ","
		if i == len(aspects)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  %q: {\n    \"strengths\": [],\n    \"weaknesses\": [],\n    \"recommendations\": []\n  }%s\n", a, sep)
	}
	b.WriteString("}\n\nEnsure your response is thorough, critical, and in valid JSON format.")

	return llm.Request{
		Messages:  []llm.Message{llm.System(overviewSystemPrompt), llm.User(b.String())},
		MaxTokens: overviewMaxTokens,
	}
}

// Chat answers one user question about the captured page text.
func (p Prompts) Chat(req models.ChatRequest) llm.Request {
	user := fmt.Sprintf("Website content: %s\n\nUser question: %s", p.clip(req.WebsiteContent), req.Message)
	return llm.Request{
		Messages:  []llm.Message{llm.System(chatSystemPrompt), llm.User(user)},
		MaxTokens: chatMaxTokens,
	}
}

func writeSections(b *strings.Builder, sections []section) {
	b.WriteString("{\n")
	for _, s := range sections {
		fmt.Fprintf(b, "  %q: {\n", s.Key)
		for _, f := range s.Fields {
			name, typ, _ := strings.Cut(f, ": ")
			fmt.Fprintf(b, "    %q: %s,\n", name, typ)
		}
		b.WriteString("    \"analysis\": string,\n    \"recommendations\": [string]\n  },\n")
	}
	b.WriteString("  \"overallAnalysis\": string\n}\n")
}
