// Package prompts builds search prompts tailored to a topic and requested
// resource type. Topic classification and the template tables are static so
// generation is a pure function of its inputs.
package prompts

import (
	"fmt"
	"strings"

	"github.com/aihorizon/eduscout/internal/types"
)

// All requests prompts for every resource category
const All = "all"

// Topic buckets. Topics naming roles that only exist because of AI get
// different search framing than traditional roles that AI augments.
var aiNewRoleKeywords = []string{
	"prompt engineering", "ai security engineering", "mlsecops",
	"ai governance", "ai security architecture",
}

var aiAugmentedRoleKeywords = []string{
	"ai-enhanced", "ai-augmented", "threat intelligence",
	"penetration testing", "threat hunting", "security research", "security analysis",
}

// categoryOrder fixes the iteration order for the "all" case. Go maps
// iterate randomly, so the table order lives here.
var categoryOrder = []types.ResourceType{
	types.TypeVideo,
	types.TypeCourse,
	types.TypeDocumentation,
	types.TypeTool,
	types.TypeBook,
}

// Each template references the topic as %[1]s, which may appear more than once.
var aiNewRoleTemplates = map[types.ResourceType][2]string{
	types.TypeVideo: {
		"Find cutting-edge YouTube content for '%[1]s' - an emerging AI-cybersecurity role. Focus on: AI/ML security tutorials, practical frameworks, conference talks from DEF CON/Black Hat/BSides, hands-on labs, recent content.",
		"Search for expert YouTube videos on %[1]s including AI security implementation, real-world case studies, and practical demonstrations from cybersecurity conferences.",
	},
	types.TypeCourse: {
		"Find specialized online courses for '%[1]s' covering AI security engineering, ML pipeline security, and AI governance. Include new certifications and emerging training programs.",
		"What are the latest %[1]s courses focusing on AI/ML security implementation, practical labs, and industry-relevant training?",
	},
	types.TypeDocumentation: {
		"Find technical documentation for '%[1]s' including AI security frameworks, ML security guidelines, vendor documentation for AI security tools, and emerging industry standards.",
		"Search for official AI security documentation, whitepapers on %[1]s, and technical guides for implementing AI-cybersecurity practices.",
	},
	types.TypeTool: {
		"Find AI security tools, GitHub repositories, and platforms for practicing '%[1]s'. Focus on ML security testing tools, AI governance platforms, and hands-on AI security labs.",
		"What are the best open-source tools and software for implementing %[1]s in AI-cybersecurity environments?",
	},
	types.TypeBook: {
		"Find recent books on '%[1]s' covering AI/ML security, emerging AI threats, and practical implementation guides for AI-cybersecurity professionals.",
		"Search for cutting-edge textbooks and references on %[1]s with focus on practical AI security implementation.",
	},
}

var aiAugmentedTemplates = map[types.ResourceType][2]string{
	types.TypeVideo: {
		"Find YouTube content showing how AI enhances '%[1]s' work. Focus on: AI-powered security tools, automation workflows, before/after AI transformation, expert demonstrations, industry case studies.",
		"Search for videos demonstrating AI-augmented %[1]s including practical tool implementations, workflow automation, and real-world AI integration examples.",
	},
	types.TypeCourse: {
		"Find courses on AI-enhanced %[1]s covering AI-powered security platforms, automation integration, and transformation of traditional cybersecurity practices.",
		"What are the best courses showing how AI transforms %[1]s work, including practical tool training and workflow automation?",
	},
	types.TypeDocumentation: {
		"Find documentation on AI-powered %[1]s tools, platforms that enhance traditional cybersecurity work, and guides for integrating AI into existing workflows.",
		"Search for technical guides on AI-augmented %[1]s including tool documentation and integration best practices.",
	},
	types.TypeTool: {
		"Find AI-powered tools that enhance %[1]s work, including machine learning platforms, automation frameworks, and AI-integrated security tools.",
		"What are the best AI-enhanced tools for %[1]s that augment human capabilities and automate routine tasks?",
	},
	types.TypeBook: {
		"Find books on AI transformation in %[1]s, covering how AI enhances traditional cybersecurity work and practical implementation strategies.",
		"Search for literature on AI-augmented %[1]s with focus on practical integration and workflow transformation.",
	},
}

var standardTemplates = map[types.ResourceType][2]string{
	types.TypeVideo: {
		"Find the best YouTube tutorial videos for learning %[1]s in cybersecurity. Include video titles, URLs, creators, and brief descriptions.",
		"What are the most comprehensive %[1]s video courses on YouTube for cybersecurity professionals?",
	},
	types.TypeCourse: {
		"Find online courses and certifications for %[1]s in cybersecurity. Include course platforms, instructors, duration, and descriptions.",
		"What are the best %[1]s courses on Coursera, edX, Udemy, and other platforms for cybersecurity?",
	},
	types.TypeDocumentation: {
		"Find official documentation, guides, and technical resources for %[1]s in cybersecurity. Include vendor docs and industry standards.",
		"What are the essential technical documentation and whitepapers for learning %[1]s?",
	},
	types.TypeTool: {
		"Find software tools, GitHub repositories, and hands-on platforms for practicing %[1]s in cybersecurity.",
		"What are the best open-source tools and software for learning and implementing %[1]s?",
	},
	types.TypeBook: {
		"Find the best books and ebooks for learning %[1]s in cybersecurity. Include author, publisher, and brief description.",
		"What are the most recommended textbooks and reference books for %[1]s?",
	},
}

// classify picks the template table for a topic via keyword membership
func classify(topic string) map[types.ResourceType][2]string {
	lower := strings.ToLower(topic)
	for _, kw := range aiNewRoleKeywords {
		if strings.Contains(lower, kw) {
			return aiNewRoleTemplates
		}
	}
	for _, kw := range aiAugmentedRoleKeywords {
		if strings.Contains(lower, kw) {
			return aiAugmentedTemplates
		}
	}
	return standardTemplates
}

// Generate returns the ordered list of search prompts for a topic.
// resourceType is a canonical type name or All. Requesting All yields both
// phrasings for every category in fixed category order; an unrecognized type
// falls back to the video phrasings.
func Generate(topic, resourceType string) []string {
	templates := classify(topic)

	if resourceType == All {
		prompts := make([]string, 0, 2*len(categoryOrder))
		for _, cat := range categoryOrder {
			pair := templates[cat]
			prompts = append(prompts, fmt.Sprintf(pair[0], topic), fmt.Sprintf(pair[1], topic))
		}
		return prompts
	}

	pair, ok := templates[types.ResourceType(resourceType)]
	if !ok {
		pair = templates[types.TypeVideo]
	}
	return []string{fmt.Sprintf(pair[0], topic), fmt.Sprintf(pair[1], topic)}
}
