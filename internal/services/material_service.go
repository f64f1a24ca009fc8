package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/readstackhq/readstack-backend/internal/dto"
	"github.com/readstackhq/readstack-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrMaterialNotFound = errors.New("reading material not found")
	ErrNotOwner         = errors.New("not the owner of this reading material")
)

const (
	SortNewest   = "newest"
	SortPopular  = "popular"
	SortKeywords = "keywords"

	DefaultPageSize = 10
)

// CatalogParams are the filter/sort/pagination inputs for one catalog page.
// Zero values fall back to defaults rather than erroring.
type CatalogParams struct {
	Page    int
	Limit   int
	Search  string
	Keyword string
	Sort    string
}

// MaterialService owns material CRUD, the keyword index and the catalog
// query engine that produces vote-annotated pages.
type MaterialService struct {
	db     *gorm.DB
	votes  *VoteService
	images *ImageService
}

func NewMaterialService(db *gorm.DB, votes *VoteService, images *ImageService) *MaterialService {
	return &MaterialService{db: db, votes: votes, images: images}
}

// catalogRow is one aggregate result: a material plus its vote count.
type catalogRow struct {
	models.ReadingMaterial
	VotesCount int64
}

// catalogFilter builds the search/keyword predicate conjunction. An empty
// parameter contributes no predicate, so no filters means match-all.
func catalogFilter(search, keyword string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search != "" {
			db = db.Where("LOWER(reading_materials.title) LIKE ?", "%"+strings.ToLower(search)+"%")
		}
		if keyword != "" {
			// keywords is a JSON array column; a substring match against
			// its text form covers every entry in one predicate.
			db = db.Where("LOWER(CAST(reading_materials.keywords AS TEXT)) LIKE ?", "%"+strings.ToLower(keyword)+"%")
		}
		return db
	}
}

// List produces one catalog page. Vote counts come from a single LEFT JOIN
// aggregate over the filtered set, and the requester's hasVoted flags plus
// owner display fields are batch-resolved for the returned page only, so a
// page costs a fixed number of queries regardless of its size.
func (s *MaterialService) List(requesterID uuid.UUID, p CatalogParams) (*dto.CatalogResponse, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	search := strings.TrimSpace(p.Search)
	keyword := strings.TrimSpace(p.Keyword)
	filter := catalogFilter(search, keyword)

	var total int64
	if err := s.db.Model(&models.ReadingMaterial{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reading materials: %w", err)
	}

	query := s.db.Model(&models.ReadingMaterial{}).Scopes(filter).
		Select("reading_materials.*, COUNT(votes.id) AS votes_count").
		Joins("LEFT JOIN votes ON votes.material_id = reading_materials.id").
		Group("reading_materials.id")

	switch p.Sort {
	case SortPopular:
		query = query.Order("votes_count DESC, reading_materials.created_at DESC")
	case SortKeywords:
		// stable match order, no sort stage
	default:
		query = query.Order("reading_materials.created_at DESC")
	}

	var rows []catalogRow
	err := query.
		Offset((p.Page - 1) * p.Limit).
		Limit(p.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog page: %w", err)
	}

	materialIDs := make([]uuid.UUID, 0, len(rows))
	ownerIDs := make([]uuid.UUID, 0, len(rows))
	seenOwners := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		materialIDs = append(materialIDs, row.ID)
		if !seenOwners[row.UserID] {
			seenOwners[row.UserID] = true
			ownerIDs = append(ownerIDs, row.UserID)
		}
	}

	voted, err := s.votes.VotedMaterialIDs(requesterID, materialIDs)
	if err != nil {
		return nil, err
	}

	owners, err := s.ownersByID(ownerIDs)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MaterialResponse, 0, len(rows))
	for _, row := range rows {
		item := toMaterialResponse(&row.ReadingMaterial)
		item.VotesCount = row.VotesCount
		item.HasVoted = voted[row.ID]
		if owner, ok := owners[row.UserID]; ok {
			item.User = dto.MaterialOwner{
				ID:           owner.ID,
				Username:     owner.Username,
				ProfileImage: owner.ProfileImage,
			}
		}
		items = append(items, item)
	}

	return &dto.CatalogResponse{
		ReadingMaterials:      items,
		CurrentPage:           p.Page,
		TotalReadingMaterials: total,
		TotalPages:            int((total + int64(p.Limit) - 1) / int64(p.Limit)),
	}, nil
}

func (s *MaterialService) ownersByID(ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	owners := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}
	var users []models.User
	if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve material owners: %w", err)
	}
	for _, u := range users {
		owners[u.ID] = u
	}
	return owners, nil
}

// Create validates and stores a new material owned by userID. When an
// image payload is supplied it is pushed to the CDN first and the material
// stores the resulting URL.
func (s *MaterialService) Create(userID uuid.UUID, req *dto.CreateMaterialRequest) (*models.ReadingMaterial, error) {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return nil, errors.New("title is required")
	case strings.TrimSpace(req.Type) == "":
		return nil, errors.New("type is required")
	case strings.TrimSpace(req.Caption) == "":
		return nil, errors.New("caption is required")
	case strings.TrimSpace(req.Author) == "":
		return nil, errors.New("author is required")
	}

	imageURL := ""
	if req.Image != "" {
		url, err := s.images.Upload(req.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload material image: %w", err)
		}
		imageURL = url
	}

	material := &models.ReadingMaterial{
		Title:         strings.TrimSpace(req.Title),
		Type:          strings.TrimSpace(req.Type),
		Caption:       req.Caption,
		Author:        strings.TrimSpace(req.Author),
		College:       strings.TrimSpace(req.College),
		Image:         imageURL,
		Keywords:      datatypes.NewJSONSlice(req.Keywords),
		SubjectTitles: datatypes.NewJSONSlice(req.SubjectTitles),
		Version:       req.Version,
		Edition:       req.Edition,
		UserID:        userID,
	}

	if err := s.db.Create(material).Error; err != nil {
		return nil, fmt.Errorf("failed to create reading material: %w", err)
	}
	return material, nil
}

// Get returns one material by id.
func (s *MaterialService) Get(id uuid.UUID) (*models.ReadingMaterial, error) {
	var material models.ReadingMaterial
	if err := s.db.First(&material, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to load reading material: %w", err)
	}
	return &material, nil
}

// GetAnnotated returns one material in the catalog's response shape:
// vote count, the requester's hasVoted flag and the owner's display fields.
func (s *MaterialService) GetAnnotated(requesterID, id uuid.UUID) (*dto.MaterialResponse, error) {
	material, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	count, err := s.votes.Count(id)
	if err != nil {
		return nil, err
	}

	hasVoted, err := s.votes.HasVoted(requesterID, id)
	if err != nil {
		return nil, err
	}

	item := toMaterialResponse(material)
	item.VotesCount = count
	item.HasVoted = hasVoted

	owners, err := s.ownersByID([]uuid.UUID{material.UserID})
	if err != nil {
		return nil, err
	}
	if owner, ok := owners[material.UserID]; ok {
		item.User = dto.MaterialOwner{
			ID:           owner.ID,
			Username:     owner.Username,
			ProfileImage: owner.ProfileImage,
		}
	}
	return &item, nil
}

// ListByOwner returns all of one user's uploads, newest first.
func (s *MaterialService) ListByOwner(userID uuid.UUID) ([]models.ReadingMaterial, error) {
	var materials []models.ReadingMaterial
	err := s.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&materials).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list own reading materials: %w", err)
	}
	return materials, nil
}

// Delete removes a material. Only the owner (or an admin) may delete; the
// CDN copy of the image is cleaned up best-effort.
func (s *MaterialService) Delete(materialID, requesterID uuid.UUID, isAdmin bool) error {
	material, err := s.Get(materialID)
	if err != nil {
		return err
	}

	if material.UserID != requesterID && !isAdmin {
		return ErrNotOwner
	}

	if material.Image != "" {
		if err := s.images.Destroy(material.Image); err != nil {
			slog.Error("failed to delete material image from CDN",
				"material_id", materialID, "error", err)
		}
	}

	if err := s.db.Delete(material).Error; err != nil {
		return fmt.Errorf("failed to delete reading material: %w", err)
	}
	return nil
}

// UpdateSubjectTitles replaces a material's subject-title set (admin edit).
func (s *MaterialService) UpdateSubjectTitles(id uuid.UUID, titles []string) (*models.ReadingMaterial, error) {
	material, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	material.SubjectTitles = datatypes.NewJSONSlice(titles)
	if err := s.db.Model(material).Update("subject_titles", material.SubjectTitles).Error; err != nil {
		return nil, fmt.Errorf("failed to update subject titles: %w", err)
	}
	return material, nil
}

// KeywordFrequencies reduces every material's keyword set to {word, count}
// pairs. Output order is first-seen insertion order across the collection
// scanned oldest first; counts are deliberately not re-sorted.
func (s *MaterialService) KeywordFrequencies() ([]dto.KeywordCount, error) {
	var materials []models.ReadingMaterial
	err := s.db.
		Select("id", "keywords").
		Order("created_at ASC").
		Find(&materials).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan keywords: %w", err)
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, m := range materials {
		for _, word := range m.Keywords {
			if _, seen := counts[word]; !seen {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	result := make([]dto.KeywordCount, 0, len(order))
	for _, word := range order {
		result = append(result, dto.KeywordCount{Word: word, Count: counts[word]})
	}
	return result, nil
}

func toMaterialResponse(m *models.ReadingMaterial) dto.MaterialResponse {
	return dto.MaterialResponse{
		ID:            m.ID,
		Title:         m.Title,
		Type:          m.Type,
		Caption:       m.Caption,
		Author:        m.Author,
		College:       m.College,
		Image:         m.Image,
		Keywords:      []string(m.Keywords),
		SubjectTitles: []string(m.SubjectTitles),
		Version:       m.Version,
		Edition:       m.Edition,
		IsApproved:    m.IsApproved,
		User:          dto.MaterialOwner{ID: m.UserID},
		CreatedAt:     m.CreatedAt,
	}
}
