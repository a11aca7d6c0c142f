package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/macworldgithub/westside-backend/internal/events"
	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/repositories"
	"github.com/macworldgithub/westside-backend/internal/storage"
	"github.com/macworldgithub/westside-backend/internal/validator"
)

type chatService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	storage   storage.Storage
	publisher events.EventPublisher
}

func NewChatService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, store storage.Storage, publisher events.EventPublisher) ChatService {
	return &chatService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		storage:   store,
		publisher: publisher,
	}
}

// ===== ROOMS =====

func (s *chatService) GetOrCreateRoom(ctx context.Context, workOrderID uint, initiatorID uint) (*models.ChatRoom, error) {
	initiator, err := s.getUser(ctx, initiatorID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.WorkOrder().GetByIDWithDetails(ctx, s.db, workOrderID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWorkOrderNotFound
		}
		return nil, fmt.Errorf("failed to get work order: %w", err)
	}

	if !CanViewWorkOrder(initiator, order) {
		return nil, NewPermissionError(initiatorID, workOrderID, "chat_room", "open", "not assigned to this order")
	}

	room, err := s.repo.ChatRoom().GetByWorkOrder(ctx, s.db, workOrderID)
	if err == nil {
		// Room already exists; make sure the requester is in it.
		if !room.HasParticipant(initiatorID) {
			if err := s.repo.ChatRoom().AddParticipant(ctx, s.db, room.ID, initiator); err != nil {
				return nil, fmt.Errorf("failed to join chat room: %w", err)
			}
			room.Participants = append(room.Participants, *initiator)
		}
		return room, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get chat room: %w", err)
	}

	participants, err := s.deriveParticipants(ctx, order, initiator)
	if err != nil {
		return nil, err
	}

	room = &models.ChatRoom{
		Name:        fmt.Sprintf("Work Order- %d", workOrderID),
		WorkOrderID: workOrderID,
		CreatedBy:   initiatorID,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.ChatRoom().Create(ctx, nil, room); err != nil {
			return fmt.Errorf("failed to create chat room: %w", err)
		}
		for _, participant := range participants {
			if err := txRepo.ChatRoom().AddParticipant(ctx, nil, room.ID, participant); err != nil {
				return fmt.Errorf("failed to add participant: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.EventChatRoomCreated, map[string]interface{}{
		"chat_room_id":  room.ID,
		"work_order_id": workOrderID,
		"created_by":    initiatorID,
	})

	s.logger.Info("Chat room created", "chat_room_id", room.ID, "work_order_id", workOrderID, "participants", len(participants))

	return s.repo.ChatRoom().GetByID(ctx, s.db, room.ID)
}

// deriveParticipants collects the room membership for a work order: its
// mechanics and managers, the order creator, every administrator, and
// the requester, deduplicated by user ID.
func (s *chatService) deriveParticipants(ctx context.Context, order *models.WorkOrder, initiator *models.User) ([]*models.User, error) {
	admins, err := s.repo.User().GetByRole(ctx, s.db, models.RoleSystemAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to load administrators: %w", err)
	}

	seen := make(map[uint]bool)
	var participants []*models.User

	add := func(user *models.User) {
		if user == nil || user.ID == 0 || seen[user.ID] {
			return
		}
		seen[user.ID] = true
		participants = append(participants, user)
	}

	for i := range order.Mechanics {
		add(&order.Mechanics[i])
	}
	for i := range order.ShopManagers {
		add(&order.ShopManagers[i])
	}
	add(&order.Creator)
	for _, admin := range admins {
		add(admin)
	}
	add(initiator)

	return participants, nil
}

func (s *chatService) ListRooms(ctx context.Context, userID uint) ([]*models.ChatRoomSummary, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var rooms []*models.ChatRoom
	if user.IsAdmin() {
		rooms, err = s.repo.ChatRoom().ListAll(ctx, s.db)
	} else {
		rooms, err = s.repo.ChatRoom().ListForUser(ctx, s.db, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list chat rooms: %w", err)
	}

	summaries := make([]*models.ChatRoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summary := &models.ChatRoomSummary{
			ID:          room.ID,
			Name:        room.Name,
			WorkOrderID: room.WorkOrderID,
		}
		last, err := s.repo.Message().GetLastByRoom(ctx, s.db, room.ID)
		if err == nil {
			summary.LastMessage = s.buildMessageResponse(ctx, last)
		} else if !repositories.IsNotFoundError(err) {
			s.logger.Error("Failed to load last message", "chat_room_id", room.ID, "error", err)
		}
		summaries = append(summaries, summary)
	}

	// Latest activity first; rooms without messages sink to the bottom.
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage, summaries[j].LastMessage
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	return summaries, nil
}

// ===== MESSAGING =====

func (s *chatService) SendMessage(ctx context.Context, roomID uint, senderID uint, req *SendMessageRequest, media []*MediaUpload) (*models.MessageResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateMessage(req.Text, len(media)); len(errs) > 0 {
		return nil, errs
	}

	if err := s.checkParticipant(ctx, roomID, senderID); err != nil {
		return nil, err
	}

	message := &models.Message{
		ChatRoomID: roomID,
		SenderID:   senderID,
		Text:       req.Text,
	}

	for _, upload := range media {
		folder, err := folderForKind(upload.Kind)
		if err != nil {
			return nil, err
		}

		key, err := s.storage.Upload(ctx, folder, upload.Filename, upload.Body, upload.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", upload.Kind, err)
		}

		switch upload.Kind {
		case "image":
			message.ImageKeys = append(message.ImageKeys, key)
		case "video":
			message.VideoKeys = append(message.VideoKeys, key)
		case "file":
			message.FileKeys = append(message.FileKeys, key)
			message.FileNames = append(message.FileNames, upload.Filename)
		case "audio":
			message.AudioKey = &key
		}
	}

	if err := s.repo.Message().Create(ctx, s.db, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.publishEvent(ctx, events.EventMessageSent, map[string]interface{}{
		"chat_room_id": roomID,
		"message_id":   message.ID,
		"sender_id":    senderID,
		"has_media":    message.HasMedia(),
	})

	return s.buildMessageResponse(ctx, message), nil
}

func folderForKind(kind string) (string, error) {
	switch kind {
	case "image":
		return storage.FolderChatImages, nil
	case "video":
		return storage.FolderChatVideos, nil
	case "file":
		return storage.FolderChatFiles, nil
	case "audio":
		return storage.FolderChatAudio, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", kind)
	}
}

func (s *chatService) EditMessage(ctx context.Context, messageID uint, userID uint, req *EditMessageRequest) (*models.MessageResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	message, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != userID {
		return nil, NewPermissionError(userID, messageID, "message", "edit", "only the sender may edit a message")
	}
	if message.IsDeleted {
		return nil, NewConflictError("message", "deleted messages cannot be edited")
	}

	if err := s.repo.Message().UpdateText(ctx, s.db, messageID, req.Text); err != nil {
		return nil, fmt.Errorf("failed to edit message: %w", err)
	}

	updated, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return s.buildMessageResponse(ctx, updated), nil
}

func (s *chatService) DeleteMessage(ctx context.Context, messageID uint, userID uint) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	message, err := s.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if message.SenderID != userID && !user.IsAdmin() {
		return NewPermissionError(userID, messageID, "message", "delete", "only the sender or an administrator may delete a message")
	}

	if err := s.repo.Message().MarkDeleted(ctx, s.db, messageID); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// ===== HISTORY =====

func (s *chatService) GetWeekMessages(ctx context.Context, roomID uint, userID uint, week int) (*models.WeekMessagesResponse, error) {
	if week < 0 {
		week = 0
	}

	if err := s.checkParticipant(ctx, roomID, userID); err != nil {
		return nil, err
	}

	anchor := weekAnchor(time.Now())
	weekStart := anchor.AddDate(0, 0, -7*week)
	weekEnd := weekStart.AddDate(0, 0, 7)

	response := &models.WeekMessagesResponse{
		Week:      week,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Messages:  []models.MessageResponse{},
	}

	oldest, err := s.repo.Message().GetOldestByRoom(ctx, s.db, roomID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return response, nil
		}
		return nil, fmt.Errorf("failed to find oldest message: %w", err)
	}

	response.TotalWeeks = int(anchor.Sub(weekAnchor(oldest.CreatedAt))/(7*24*time.Hour)) + 1

	messages, err := s.repo.Message().GetByRoomInRange(ctx, s.db, roomID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	for _, message := range messages {
		response.Messages = append(response.Messages, *s.buildMessageResponse(ctx, message))
	}

	return response, nil
}

// weekAnchor returns the most recent Sunday 00:00 UTC at or before t.
func weekAnchor(t time.Time) time.Time {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// ===== PARTICIPANT SYNC =====

func (s *chatService) SyncParticipants(ctx context.Context, workOrderID uint) error {
	room, err := s.repo.ChatRoom().GetByWorkOrder(ctx, s.db, workOrderID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("failed to get chat room: %w", err)
	}

	order, err := s.repo.WorkOrder().GetByIDWithDetails(ctx, s.db, workOrderID)
	if err != nil {
		return fmt.Errorf("failed to get work order: %w", err)
	}

	creator, err := s.getUser(ctx, room.CreatedBy)
	if err != nil {
		return err
	}

	desired, err := s.deriveParticipants(ctx, order, creator)
	if err != nil {
		return err
	}

	want := make(map[uint]*models.User, len(desired))
	for _, user := range desired {
		want[user.ID] = user
	}
	have := make(map[uint]bool, len(room.Participants))
	for i := range room.Participants {
		have[room.Participants[i].ID] = true
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		for id, user := range want {
			if !have[id] {
				if err := txRepo.ChatRoom().AddParticipant(ctx, nil, room.ID, user); err != nil {
					return err
				}
			}
		}
		for id := range have {
			if _, ok := want[id]; !ok {
				if err := txRepo.ChatRoom().RemoveParticipant(ctx, nil, room.ID, id); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ===== HELPERS =====

func (s *chatService) getUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *chatService) getMessage(ctx context.Context, id uint) (*models.Message, error) {
	message, err := s.repo.Message().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return message, nil
}

func (s *chatService) checkParticipant(ctx context.Context, roomID, userID uint) error {
	exists, err := s.repo.ChatRoom().IsParticipant(ctx, s.db, roomID, userID)
	if err != nil {
		return fmt.Errorf("failed to check participant: %w", err)
	}
	if !exists {
		user, err := s.getUser(ctx, userID)
		if err != nil {
			return err
		}
		if !user.IsAdmin() {
			return NewPermissionError(userID, roomID, "chat_room", "access", "not a participant of this room")
		}
	}
	return nil
}

// buildMessageResponse resolves stored media keys to signed URLs.
// Deleted messages keep their envelope but carry no content.
func (s *chatService) buildMessageResponse(ctx context.Context, message *models.Message) *models.MessageResponse {
	resp := &models.MessageResponse{
		ID:         message.ID,
		ChatRoomID: message.ChatRoomID,
		SenderID:   message.SenderID,
		SenderName: message.Sender.Name,
		IsDeleted:  message.IsDeleted,
		IsEdited:   message.IsEdited,
		CreatedAt:  message.CreatedAt,
		ImageURLs:  []string{},
		VideoURLs:  []string{},
		FileURLs:   []string{},
		FileNames:  []string{},
	}

	if resp.SenderName == "" {
		if sender, err := s.getUser(ctx, message.SenderID); err == nil {
			resp.SenderName = sender.Name
		}
	}

	if message.IsDeleted {
		return resp
	}

	resp.Text = message.Text
	resp.ImageURLs = s.signKeys(ctx, message.ImageKeys)
	resp.VideoURLs = s.signKeys(ctx, message.VideoKeys)
	resp.FileURLs = s.signKeys(ctx, message.FileKeys)
	resp.FileNames = append(resp.FileNames, message.FileNames...)

	if message.AudioKey != nil && *message.AudioKey != "" {
		if url, err := s.storage.SignedURL(ctx, *message.AudioKey); err == nil {
			resp.AudioURL = &url
		} else {
			s.logger.Error("Failed to sign audio URL", "key", *message.AudioKey, "error", err)
		}
	}

	return resp
}

func (s *chatService) signKeys(ctx context.Context, keys datatypes.JSONSlice[string]) []string {
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		url, err := s.storage.SignedURL(ctx, key)
		if err != nil {
			s.logger.Error("Failed to sign media URL", "key", key, "error", err)
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

func (s *chatService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}
