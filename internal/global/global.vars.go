package global

import (
	"meta_content/config"
	"meta_content/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	ContentItems     string // Tên collection cho các content item (bài viết, kịch bản, hình ảnh, video)
	ContentApprovals string // Tên collection cho các yêu cầu phê duyệt nội dung
	ResumeQueue      string // Tên collection cho hàng đợi resume webhook sau khi phê duyệt
	WebhookLogs      string // Tên collection cho log các lần gửi webhook ra ngoài
}

// Các biến toàn cục
var Validate *validator.Validate                                       // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                      // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration                                 // Cấu hình của server
var MongoDB_ColNames MongoDB_CollectionName = MongoDB_CollectionName{} // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases
