package services

import (
	"net/url"
	"strings"

	"github.com/clubstride/hourtrack/internal/models"
)

const MaxLinksPerDeliverable = 20

var (
	ErrDeliverableTypeInvalid        = validationError("unknown deliverable type")
	ErrDeliverableDescriptionMissing = validationError("description is required")
	ErrDeliverableLinkInvalid        = validationError("links must be absolute http or https URLs")
	ErrDeliverableTooManyLinks       = validationError("too many links")
)

type DeliverableInput struct {
	Type        string `json:"type" form:"type"`
	Description string `json:"description" form:"description"`
	Links       string `json:"links" form:"links"`
	ProofLinks  string `json:"proof_links" form:"proof_links"`
}

type NormalizedDeliverable struct {
	Type        models.DeliverableType
	Description string
	Links       []string
	ProofLinks  []string
}

func NormalizeDeliverableInput(input DeliverableInput) (NormalizedDeliverable, error) {
	deliverableType, ok := models.ParseDeliverableType(input.Type)
	if !ok {
		return NormalizedDeliverable{}, ErrDeliverableTypeInvalid
	}
	description := TrimDescription(strings.TrimSpace(input.Description))
	if description == "" {
		return NormalizedDeliverable{}, ErrDeliverableDescriptionMissing
	}
	links, err := ParseLinkList(input.Links)
	if err != nil {
		return NormalizedDeliverable{}, err
	}
	proofLinks, err := ParseLinkList(input.ProofLinks)
	if err != nil {
		return NormalizedDeliverable{}, err
	}

	return NormalizedDeliverable{
		Type:        deliverableType,
		Description: description,
		Links:       links,
		ProofLinks:  proofLinks,
	}, nil
}

// ParseLinkList splits on newlines and commas and keeps absolute http(s) URLs.
func ParseLinkList(raw string) ([]string, error) {
	fields := strings.FieldsFunc(raw, func(char rune) bool {
		return char == '\n' || char == '\r' || char == ','
	})

	links := make([]string, 0, len(fields))
	for _, field := range fields {
		link := strings.TrimSpace(field)
		if link == "" {
			continue
		}
		parsed, err := url.Parse(link)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return nil, ErrDeliverableLinkInvalid
		}
		links = append(links, link)
	}
	if len(links) > MaxLinksPerDeliverable {
		return nil, ErrDeliverableTooManyLinks
	}
	return links, nil
}
