package feed

import (
	"context"
	"sync"
	"time"

	"fireside/app/database"
)

// memoryStore is an in-memory implementation of the database store interfaces
// for exercising reconciliation without a live database.
type memoryStore struct {
	mu sync.Mutex

	feedSeq int64
	feeds   map[int64]*database.Feed

	itemSeq int64
	items   map[int64]*database.Item

	catalogSeq int64
	authors    map[string]int64
	publishers map[string]int64
	categories map[string]int64

	itemAuthors    map[[2]int64]bool
	itemPublishers map[[2]int64]bool
	feedCategories map[[2]int64]bool

	subscriptions map[[2]int64]bool
	itemStates    map[[2]int64]*itemState
}

type itemState struct {
	isRead  bool
	isSaved bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		feeds:          make(map[int64]*database.Feed),
		items:          make(map[int64]*database.Item),
		authors:        make(map[string]int64),
		publishers:     make(map[string]int64),
		categories:     make(map[string]int64),
		itemAuthors:    make(map[[2]int64]bool),
		itemPublishers: make(map[[2]int64]bool),
		feedCategories: make(map[[2]int64]bool),
		subscriptions:  make(map[[2]int64]bool),
		itemStates:     make(map[[2]int64]*itemState),
	}
}

func (s *memoryStore) GetFeedByURL(_ context.Context, feedURL string) (*database.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.feeds {
		if f.FeedURL == feedURL {
			copied := *f
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) GetAllFeeds(_ context.Context) ([]database.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var feeds []database.Feed
	for id := int64(1); id <= s.feedSeq; id++ {
		if f, ok := s.feeds[id]; ok {
			feeds = append(feeds, *f)
		}
	}
	return feeds, nil
}

func (s *memoryStore) GetFeedCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feeds), nil
}

func (s *memoryStore) InsertFeed(_ context.Context, feedURL, title, description string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedSeq++
	now := time.Now()
	s.feeds[s.feedSeq] = &database.Feed{
		ID:            s.feedSeq,
		FeedURL:       feedURL,
		Title:         title,
		Description:   description,
		LastFetchedAt: &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return s.feedSeq, nil
}

func (s *memoryStore) UpdateFeedMetadata(_ context.Context, feedID int64, title, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.feeds[feedID]
	now := time.Now()
	f.Title = title
	f.Description = description
	f.LastFetchedAt = &now
	f.UpdatedAt = now
	return nil
}

func (s *memoryStore) SetFeedPublisher(_ context.Context, feedID, publisherID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds[feedID].PublisherID = &publisherID
	return nil
}

func (s *memoryStore) GetItemByGUID(_ context.Context, feedID int64, guid string) (*database.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.FeedID == feedID && item.GUID == guid {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) GetItemCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

func (s *memoryStore) GetUserItems(_ context.Context, userID int64, limit, offset int) ([]database.UserItem, error) {
	return nil, nil
}

func (s *memoryStore) InsertItem(_ context.Context, item database.Item) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemSeq++
	item.ID = s.itemSeq
	item.CreatedAt = time.Now()
	s.items[item.ID] = &item
	return item.ID, nil
}

func (s *memoryStore) UpdateItemContentIfLonger(_ context.Context, itemID int64, title, content string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.items[itemID]
	if len(content) <= len(item.Content) {
		return false, nil
	}
	if title != "" {
		item.Title = title
	}
	item.Content = content
	return true, nil
}

func (s *memoryStore) GetItemsForExtraction(_ context.Context, limit int) ([]database.ItemForExtraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.ItemForExtraction
	for id := int64(1); id <= s.itemSeq && len(out) < limit; id++ {
		item, ok := s.items[id]
		if !ok || item.Link == "" || item.ContentExtractedAt != nil || item.ExtractionAttempts >= 3 {
			continue
		}
		out = append(out, database.ItemForExtraction{ID: item.ID, Link: item.Link})
	}
	return out, nil
}

func (s *memoryStore) RecordExtractionAttempt(_ context.Context, itemID int64, succeeded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.items[itemID]
	item.ExtractionAttempts++
	if succeeded {
		now := time.Now()
		item.ContentExtractedAt = &now
	}
	return nil
}

func (s *memoryStore) findOrCreate(m map[string]int64, name string) int64 {
	if id, ok := m[name]; ok {
		return id
	}
	s.catalogSeq++
	m[name] = s.catalogSeq
	return s.catalogSeq
}

func (s *memoryStore) FindOrCreateAuthor(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findOrCreate(s.authors, name), nil
}

func (s *memoryStore) FindOrCreatePublisher(_ context.Context, name, website, logoURL string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findOrCreate(s.publishers, name), nil
}

func (s *memoryStore) FindOrCreateCategory(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findOrCreate(s.categories, name), nil
}

func (s *memoryStore) LinkItemAuthor(_ context.Context, itemID, authorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemAuthors[[2]int64{itemID, authorID}] = true
	return nil
}

func (s *memoryStore) LinkItemPublisher(_ context.Context, itemID, publisherID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemPublishers[[2]int64{itemID, publisherID}] = true
	return nil
}

func (s *memoryStore) LinkFeedCategory(_ context.Context, feedID, categoryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedCategories[[2]int64{feedID, categoryID}] = true
	return nil
}

func (s *memoryStore) Subscribe(_ context.Context, userID, feedID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[[2]int64{userID, feedID}] = true
	return nil
}

func (s *memoryStore) GetSubscriberIDs(_ context.Context, feedID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for key := range s.subscriptions {
		if key[1] == feedID {
			ids = append(ids, key[0])
		}
	}
	return ids, nil
}

func (s *memoryStore) GetSubscriptions(_ context.Context, userID int64) ([]database.SubscriptionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var subs []database.SubscriptionSummary
	for key := range s.subscriptions {
		if key[0] != userID {
			continue
		}
		f := s.feeds[key[1]]
		subs = append(subs, database.SubscriptionSummary{
			FeedID:  f.ID,
			Title:   f.Title,
			FeedURL: f.FeedURL,
		})
	}
	return subs, nil
}

func (s *memoryStore) EnsureItemState(_ context.Context, userID, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int64{userID, itemID}
	if _, ok := s.itemStates[key]; !ok {
		s.itemStates[key] = &itemState{}
	}
	return nil
}

func (s *memoryStore) SetItemState(_ context.Context, userID, itemID int64, isRead, isSaved *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int64{userID, itemID}
	state, ok := s.itemStates[key]
	if !ok {
		state = &itemState{}
		s.itemStates[key] = state
	}
	if isRead != nil {
		state.isRead = *isRead
	}
	if isSaved != nil {
		state.isSaved = *isSaved
	}
	return nil
}
