package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/repositories"
	"github.com/stackdeck/backend/pkg/push"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the storage semantics the
// pipeline depends on, including the unique notification identity index.

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[uint]*models.User)}
}

func (f *fakeUsers) CreateUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user.ID = f.nextID
	clone := *user
	f.byID[user.ID] = &clone
	return nil
}

func (f *fakeUsers) GetUserByID(id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.byID[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetUserByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetUserByUsername(username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.byID {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) AddScore(userID uint, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.byID[userID]; ok {
		user.Score += delta
	}
	return nil
}

type fakeStacks struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*models.Stack
}

func newFakeStacks() *fakeStacks {
	return &fakeStacks{byID: make(map[uint]*models.Stack)}
}

func (f *fakeStacks) CreateStack(stack *models.Stack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	stack.ID = f.nextID
	clone := *stack
	f.byID[stack.ID] = &clone
	return nil
}

func (f *fakeStacks) GetStackByID(id uint) (*models.Stack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stack, ok := f.byID[id]; ok {
		clone := *stack
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStacks) GetStacks(page, limit int) ([]models.Stack, int64, error) {
	return nil, 0, nil
}

func (f *fakeStacks) delete(id uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

type fakeCards struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*models.Card
}

func newFakeCards() *fakeCards {
	return &fakeCards{byID: make(map[uint]*models.Card)}
}

func (f *fakeCards) CreateCard(card *models.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	card.ID = f.nextID
	clone := *card
	f.byID[card.ID] = &clone
	return nil
}

func (f *fakeCards) GetCardByID(id uint) (*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if card, ok := f.byID[id]; ok {
		clone := *card
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCards) GetCardsByStackID(stackID uint, page, limit int) ([]models.Card, int64, error) {
	return nil, 0, nil
}

func (f *fakeCards) IncrementFlagsCount(cardID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if card, ok := f.byID[cardID]; ok {
		card.FlagsCount++
	}
	return nil
}

func (f *fakeCards) delete(id uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

type fakeComments struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*models.Comment
}

func newFakeComments() *fakeComments {
	return &fakeComments{byID: make(map[uint]*models.Comment)}
}

func (f *fakeComments) CreateComment(comment *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	comment.ID = f.nextID
	clone := *comment
	f.byID[comment.ID] = &clone
	return nil
}

func (f *fakeComments) GetCommentByID(id uint) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if comment, ok := f.byID[id]; ok {
		clone := *comment
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeComments) GetCommentsByCardID(cardID uint) ([]models.Comment, error) {
	return nil, nil
}

type fakeSubscriptions struct {
	mu     sync.Mutex
	nextID uint
	subs   []*models.Subscription
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{}
}

func (f *fakeSubscriptions) Subscribe(stackID, userID uint) (*models.Subscription, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.StackID == stackID && sub.UserID == userID {
			return sub, false, nil
		}
	}
	f.nextID++
	sub := &models.Subscription{ID: f.nextID, StackID: stackID, UserID: userID}
	f.subs = append(f.subs, sub)
	return sub, true, nil
}

func (f *fakeSubscriptions) Unsubscribe(stackID, userID uint) error {
	return nil
}

func (f *fakeSubscriptions) SubscriberIDs(stackID uint) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uint
	for _, sub := range f.subs {
		if sub.StackID == stackID {
			ids = append(ids, sub.UserID)
		}
	}
	return ids, nil
}

func (f *fakeSubscriptions) IsSubscribed(stackID, userID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.StackID == stackID && sub.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type voteKey struct {
	votableType string
	votableID   uint
	userID      uint
}

type fakeVotes struct {
	mu     sync.Mutex
	nextID uint
	votes  map[voteKey]*models.Vote
}

func newFakeVotes() *fakeVotes {
	return &fakeVotes{votes: make(map[voteKey]*models.Vote)}
}

func (f *fakeVotes) VoteBy(votableType string, votableID, userID uint, kind string) (*models.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := voteKey{votableType, votableID, userID}
	if vote, ok := f.votes[key]; ok {
		vote.Kind = kind
		return vote, nil
	}
	f.nextID++
	vote := &models.Vote{ID: f.nextID, VotableType: votableType, VotableID: votableID, UserID: userID, Kind: kind}
	f.votes[key] = vote
	return vote, nil
}

func (f *fakeVotes) CountVotes(votableType string, votableID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for key := range f.votes {
		if key.votableType == votableType && key.votableID == votableID {
			count++
		}
	}
	return count, nil
}

type fakeDevices struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*models.Device
}

func newFakeDevices() *fakeDevices {
	return &fakeDevices{byID: make(map[uint]*models.Device)}
}

func (f *fakeDevices) CreateDevice(device *models.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	device.ID = f.nextID
	device.AccessToken = models.NewAccessToken()
	clone := *device
	f.byID[device.ID] = &clone
	return nil
}

func (f *fakeDevices) GetDeviceByID(id uint) (*models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if device, ok := f.byID[id]; ok {
		clone := *device
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDevices) GetDeviceByAccessToken(token string) (*models.Device, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDevices) RecentWithEndpoint(userID uint, limit int) ([]models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var devices []models.Device
	for _, device := range f.byID {
		if device.UserID == userID && device.EndpointARN != "" && device.LastSignInAt != nil {
			devices = append(devices, *device)
		}
	}
	if len(devices) > limit {
		devices = devices[:limit]
	}
	return devices, nil
}

func (f *fakeDevices) SignIn(deviceID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if device, ok := f.byID[deviceID]; ok {
		now := time.Now().UTC()
		device.LastSignInAt = &now
	}
	return nil
}

func (f *fakeDevices) UpdatePushToken(deviceID uint, pushToken string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	device, ok := f.byID[deviceID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if device.PushToken == pushToken {
		return false, nil
	}
	device.PushToken = pushToken
	device.EndpointARN = ""
	return true, nil
}

func (f *fakeDevices) SetEndpoint(deviceID uint, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if device, ok := f.byID[deviceID]; ok {
		device.EndpointARN = endpoint
	}
	return nil
}

// addReady registers a signed-in device with a resolved endpoint.
func (f *fakeDevices) addReady(userID uint, endpoint string) *models.Device {
	device := &models.Device{UserID: userID, PushToken: "tok-" + endpoint, EndpointARN: endpoint}
	_ = f.CreateDevice(device)
	f.mu.Lock()
	now := time.Now().UTC()
	f.byID[device.ID].EndpointARN = endpoint
	f.byID[device.ID].LastSignInAt = &now
	f.mu.Unlock()
	return device
}

type identityKey struct {
	userID      uint
	action      string
	subjectType string
	subjectID   uint
}

type fakeNotifications struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*models.Notification

	// raceRow, when set, is inserted on the next create which then fails
	// with a duplicate-key error, simulating a lost find-or-create race.
	raceRow *models.Notification
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{byID: make(map[uint]*models.Notification)}
}

func (f *fakeNotifications) identity(n *models.Notification) identityKey {
	return identityKey{n.UserID, n.Action, n.SubjectType, n.SubjectID}
}

func (f *fakeNotifications) FindByIdentity(userID uint, action string, subject models.Ref) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := identityKey{userID, action, subject.Type, subject.ID}
	for _, n := range f.byID {
		if f.identity(n) == key {
			clone := *n
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeNotifications) CreateNotification(n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.raceRow != nil {
		race := f.raceRow
		f.raceRow = nil
		f.nextID++
		race.ID = f.nextID
		race.CreatedAt = time.Now().UTC()
		f.byID[race.ID] = race
		return gorm.ErrDuplicatedKey
	}

	key := f.identity(n)
	for _, existing := range f.byID {
		if f.identity(existing) == key {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now().UTC()
	clone := *n
	f.byID[n.ID] = &clone
	return nil
}

func (f *fakeNotifications) MergeSender(notificationID uint, username string, senderID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.byID[notificationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if n.Senders == nil {
		n.Senders = datatypes.JSONMap{}
	}
	n.Senders[username] = senderID
	return nil
}

func (f *fakeNotifications) GetNotificationByID(id uint) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.byID[id]; ok {
		clone := *n
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeNotifications) GetByUserID(userID uint, page, limit int) ([]models.Notification, int64, error) {
	all := f.forUser(userID)
	return all, int64(len(all)), nil
}

func (f *fakeNotifications) GetUnreadCount(userID uint) (int64, error) {
	var count int64
	for _, n := range f.forUser(userID) {
		if !n.Read() {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotifications) MarkAllRead(userID uint, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var updated int64
	now := time.Now().UTC()
	for _, n := range f.byID {
		if n.UserID == userID && n.ReadAt == nil && !n.CreatedAt.After(before) {
			n.ReadAt = &now
			updated++
		}
	}
	return updated, nil
}

func (f *fakeNotifications) MarkAllSeen(userID uint, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var updated int64
	now := time.Now().UTC()
	for _, n := range f.byID {
		if n.UserID == userID && n.SeenAt == nil && !n.CreatedAt.After(before) {
			n.SeenAt = &now
			updated++
		}
	}
	return updated, nil
}

func (f *fakeNotifications) SetSentAt(notificationID uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.byID[notificationID]; ok {
		n.SentAt = &at
	}
	return nil
}

func (f *fakeNotifications) forUser(userID uint) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.byID {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out
}

func (f *fakeNotifications) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeActivities struct {
	mu   sync.Mutex
	byID map[string]*models.Activity
}

func newFakeActivities() *fakeActivities {
	return &fakeActivities{byID: make(map[string]*models.Activity)}
}

func (f *fakeActivities) Record(_ context.Context, activity *models.Activity) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	activity.ID = primitive.NewObjectID()
	activity.Processed = false
	activity.CreatedAt = time.Now().UTC()
	clone := *activity
	f.byID[activity.ID.Hex()] = &clone
	return activity.ID.Hex(), nil
}

func (f *fakeActivities) GetActivityByID(_ context.Context, id string) (*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if activity, ok := f.byID[id]; ok {
		clone := *activity
		return &clone, nil
	}
	return nil, repositories.ErrActivityNotFound
}

func (f *fakeActivities) MarkProcessed(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	activity, ok := f.byID[id]
	if !ok {
		return false, repositories.ErrActivityNotFound
	}
	if activity.Processed {
		return false, nil
	}
	activity.Processed = true
	return true, nil
}

type publishCall struct {
	endpoint string
	payload  push.Payload
}

type fakeTransport struct {
	mu    sync.Mutex
	calls []publishCall
	err   error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{}
}

func (f *fakeTransport) Publish(_ context.Context, endpoint string, payload push.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, publishCall{endpoint: endpoint, payload: payload})
	return f.err
}

func (f *fakeTransport) published() []publishCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishCall, len(f.calls))
	copy(out, f.calls)
	return out
}
