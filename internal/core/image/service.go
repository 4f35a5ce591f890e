package image

// DefaultFoodImages 預設的食物圖片輪替清單
var DefaultFoodImages = []string{
	unsplash("1565299624946-b28f40a0ca4b"),
	unsplash("1567620905732-2d1ec7ab7445"),
	unsplash("1546069901-ba9599a7e63c"),
	unsplash("1555939594-58d7cb561ad1"),
	unsplash("1563379091339-03246963d96c"),
	unsplash("1574071318508-1cdbab80d002"),
	unsplash("1565958011703-44f9829ba187"),
	unsplash("1551782450-a2132b4ba21d"),
	unsplash("1512621776951-a57141f2eefd"),
	unsplash("1565299507177-b0ac66763828"),
}

func unsplash(id string) string {
	return "https://images.unsplash.com/photo-" + id + "?auto=format&fit=crop&w=400&q=60"
}

// Service 依區塊序號決定食譜圖片
type Service struct {
	images []string
}

// NewService 創建圖片服務，清單為空時使用預設圖片
func NewService(images []string) *Service {
	if len(images) == 0 {
		images = DefaultFoodImages
	}
	cp := make([]string, len(images))
	copy(cp, images)
	return &Service{images: cp}
}

// ForIndex 同一序號永遠回傳同一張圖
func (s *Service) ForIndex(i int) string {
	if i < 0 {
		i = -i
	}
	return s.images[i%len(s.images)]
}

// Len 圖片數量
func (s *Service) Len() int {
	return len(s.images)
}
