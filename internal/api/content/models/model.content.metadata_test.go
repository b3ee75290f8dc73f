// Package models - Test lifecycle helpers và decode metadata bag.
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiresApproval(t *testing.T) {
	// Chỉ social-post phải qua trạng thái pending
	assert.True(t, RequiresApproval(ContentTypeSocialPost))

	for _, contentType := range []string{ContentTypeArticle, ContentTypeVideo, ContentTypeImage, ContentTypeAudio, ContentTypeData} {
		assert.False(t, RequiresApproval(contentType), "type %s không cần duyệt", contentType)
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, status := range []string{
		ContentStatusPending, ContentStatusApproved, ContentStatusDeclined,
		ContentStatusScheduled, ContentStatusPublishing, ContentStatusPublished,
	} {
		assert.True(t, IsValidStatus(status), "status %s phải hợp lệ", status)
	}

	assert.False(t, IsValidStatus("draft"))
	assert.False(t, IsValidStatus(""))
	assert.False(t, IsValidStatus("PENDING"))
}

func TestResumeWebhookURL(t *testing.T) {
	item := ContentItem{}
	assert.Empty(t, item.ResumeWebhookURL())

	item.Metadata = map[string]interface{}{"platform": "facebook"}
	assert.Empty(t, item.ResumeWebhookURL())

	item.Metadata[MetadataKeyResumeWebhookURL] = "https://n8n.example.com/resume/abc"
	assert.Equal(t, "https://n8n.example.com/resume/abc", item.ResumeWebhookURL())

	// Giá trị không phải string (dữ liệu bẩn) coi như không có URL
	item.Metadata[MetadataKeyResumeWebhookURL] = 42
	assert.Empty(t, item.ResumeWebhookURL())
}

func TestDecodeMetadata_SocialPost(t *testing.T) {
	bag := map[string]interface{}{
		"platform":         "instagram",
		"hashtags":         []interface{}{"#sale", "#newyear"},
		"caption":          "Khuyến mãi cuối năm",
		"resumeWebhookUrl": "https://n8n.example.com/resume/abc",
	}

	kind, decoded := DecodeMetadata(ContentTypeSocialPost, bag)
	require.Equal(t, MetadataKindSocialPost, kind)

	m, ok := decoded.(SocialPostMetadata)
	require.True(t, ok)
	assert.Equal(t, "instagram", m.Platform)
	assert.Equal(t, []string{"#sale", "#newyear"}, m.Hashtags)
	assert.Equal(t, "https://n8n.example.com/resume/abc", m.ResumeWebhookURL)
}

func TestDecodeMetadata_DocumentByShape(t *testing.T) {
	// Type không phải social-post/article nhưng bag có filePath → document
	bag := map[string]interface{}{
		"filePath": "/exports/report-2026-01.pdf",
		"mimeType": "application/pdf",
	}

	kind, decoded := DecodeMetadata(ContentTypeData, bag)
	require.Equal(t, MetadataKindDocument, kind)

	m, ok := decoded.(DocumentMetadata)
	require.True(t, ok)
	assert.Equal(t, "/exports/report-2026-01.pdf", m.FilePath)
}

func TestDecodeMetadata_Lease(t *testing.T) {
	bag := map[string]interface{}{
		"propertyAddress": "12 Nguyễn Huệ, Q1",
		"tenantName":      "Trần Văn B",
	}

	kind, decoded := DecodeMetadata(ContentTypeData, bag)
	require.Equal(t, MetadataKindLease, kind)

	m, ok := decoded.(LeaseMetadata)
	require.True(t, ok)
	assert.Equal(t, "12 Nguyễn Huệ, Q1", m.PropertyAddress)
}

func TestDecodeMetadata_Opaque(t *testing.T) {
	bag := map[string]interface{}{"someUnknownKey": true}

	kind, decoded := DecodeMetadata(ContentTypeVideo, bag)
	assert.Equal(t, MetadataKindOpaque, kind)
	// Bag không nhận diện được trả về nguyên vẹn
	assert.Equal(t, bag, decoded)

	kind, decoded = DecodeMetadata(ContentTypeVideo, nil)
	assert.Equal(t, MetadataKindOpaque, kind)
	assert.NotNil(t, decoded)
}
