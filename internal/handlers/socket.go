package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Yasvanth-2005/chat-backend/internal/database"
	"github.com/Yasvanth-2005/chat-backend/internal/models"
	"github.com/Yasvanth-2005/chat-backend/internal/presence"
	"github.com/Yasvanth-2005/chat-backend/internal/services"
	"github.com/Yasvanth-2005/chat-backend/pkg/logger"
	"github.com/Yasvanth-2005/chat-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"gorm.io/datatypes"
)

// InitSocketServer wires the realtime surface: presence bookkeeping on
// join/disconnect and the chat events. Failed socket operations are logged
// and dropped; no error event goes back to the client.
//
// Each socket joins a personal room named after its user id (the fan-out
// target) and the global presence room; opening a chat history joins the
// chat's room for room-based messaging.
func InitSocketServer(vis *services.Visibility, registry *presence.Registry) (*socketio.Server, *services.Dispatcher) {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
			&polling.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
		},
	})

	dispatch := services.NewDispatcher(server, registry)

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		logger.Debug().Str("socket_id", s.ID()).Msg("socket connected")
		return nil
	})

	server.OnEvent("/", "join", func(s socketio.Conn, data map[string]interface{}) {
		userID, _ := data["userId"].(string)
		displayName, _ := data["displayName"].(string)
		if userID == "" || !utils.IsUUID(userID) {
			logger.Warn().Str("socket_id", s.ID()).Msg("join without a valid userId")
			return
		}

		user, err := upsertJoiningUser(userID, displayName, s.ID())
		if err != nil {
			logger.Error().Err(err).Str("user_id", userID).Msg("join failed")
			return
		}

		// O(1) lookup on later events.
		s.SetContext(userID)

		registry.Join(userID, s.ID())
		s.Join(userID)
		s.Join("presence")

		database.CacheInvalidate(contactsCacheKey)

		dispatch.Broadcast("userJoined", gin.H{"user": user})
		dispatch.Broadcast("participantStatusUpdate", gin.H{
			"participantId": userID,
			"status":        "online",
			"active":        true,
		})
		s.Emit("onlineUsers", registry.Snapshot())
	})

	server.OnEvent("/", "startChat", func(s socketio.Conn, data map[string]interface{}) {
		userID, _ := data["userId"].(string)
		recipientID, _ := data["recipientId"].(string)
		if userID == "" {
			userID, _ = s.Context().(string)
		}

		chat, created, err := vis.FindOrCreateDirectChat(userID, recipientID)
		if err != nil {
			logger.Error().Err(err).Str("user_id", userID).Msg("startChat failed")
			return
		}

		if created {
			dispatch.FanOut(chat.ParticipantIDs(), "chatStarted", gin.H{"chat": chat})
		} else {
			dispatch.ToUser(userID, "chatStarted", gin.H{"chat": chat})
		}
	})

	server.OnEvent("/", "directMessage", func(s socketio.Conn, data map[string]interface{}) {
		chatID, _ := data["chatId"].(string)
		senderID, _ := data["senderId"].(string)
		content, _ := data["content"].(string)
		kind, _ := data["type"].(string)
		if senderID == "" {
			senderID, _ = s.Context().(string)
		}

		var replyTo *string
		if rt, ok := data["replyTo"].(string); ok && rt != "" {
			replyTo = &rt
		}

		if ok, _ := database.CheckSendLimit(senderID, 30, 10*time.Second); !ok {
			logger.Warn().Str("user_id", senderID).Msg("send throttled")
			return
		}

		msg, chat, err := vis.SendMessage(chatID, senderID, content, models.MessageKind(kind), attachmentsFromPayload(data), replyTo)
		if err != nil {
			logger.Error().Err(err).Str("chat_id", chatID).Msg("directMessage failed")
			return
		}

		dispatch.FanOut(chat.ParticipantIDs(), "messageSent", gin.H{
			"chatId":  chatID,
			"message": msg,
		})
	})

	// Room-based variant: persisted the same way, delivered to whoever
	// joined the chat's room.
	server.OnEvent("/", "message", func(s socketio.Conn, data map[string]interface{}) {
		roomID, _ := data["roomId"].(string)
		senderID, _ := data["senderId"].(string)
		content, _ := data["content"].(string)
		if senderID == "" {
			senderID, _ = s.Context().(string)
		}

		msg, _, err := vis.SendMessage(roomID, senderID, content, models.MessageKindText, nil, nil)
		if err != nil {
			logger.Error().Err(err).Str("room_id", roomID).Msg("room message failed")
			return
		}

		s.Join(roomID)
		dispatch.ToRoom(roomID, "message", gin.H{
			"roomId":  roomID,
			"message": msg,
		})
	})

	server.OnEvent("/", "addReaction", func(s socketio.Conn, data map[string]interface{}) {
		chatID, _ := data["chatId"].(string)
		messageID, _ := data["messageId"].(string)
		userID, _ := data["userId"].(string)
		emoji, _ := data["emoji"].(string)
		if userID == "" {
			userID, _ = s.Context().(string)
		}

		msg, err := vis.SetReaction(chatID, messageID, userID, emoji)
		if err != nil {
			logger.Error().Err(err).Str("message_id", messageID).Msg("addReaction failed")
			return
		}

		chat, err := vis.GetChat(chatID)
		if err != nil {
			logger.Error().Err(err).Str("chat_id", chatID).Msg("addReaction fan-out failed")
			return
		}
		dispatch.FanOut(chat.ParticipantIDs(), "messageReaction", gin.H{
			"chatId":  chatID,
			"message": msg,
		})
	})

	server.OnEvent("/", "deleteMessage", func(s socketio.Conn, data map[string]interface{}) {
		messageID, _ := data["messageId"].(string)
		chatID, _ := data["chatId"].(string)
		userID, _ := data["userId"].(string)
		modeStr, _ := data["mode"].(string)
		if userID == "" {
			userID, _ = s.Context().(string)
		}
		if modeStr == "" {
			modeStr = "forEveryone"
		}

		mode, err := models.ParseDeleteMode(modeStr)
		if err != nil {
			logger.Warn().Str("mode", modeStr).Msg("deleteMessage with invalid mode")
			return
		}

		outcome, err := vis.DeleteMessage(chatID, messageID, userID, mode)
		if err != nil {
			logger.Error().Err(err).Str("message_id", messageID).Msg("deleteMessage failed")
			return
		}

		for _, pid := range outcome.Recipients {
			dispatch.ToUser(pid, "messageDeleted", gin.H{
				"chatId":      outcome.ChatID,
				"messageId":   outcome.MessageID,
				"mode":        outcome.Mode.String(),
				"lastMessage": outcome.PerViewer[pid],
			})
		}
	})

	server.OnEvent("/", "updateStatus", func(s socketio.Conn, data map[string]interface{}) {
		userID, _ := data["userId"].(string)
		status, _ := data["status"].(string)
		if userID == "" {
			userID, _ = s.Context().(string)
		}
		if userID == "" || status == "" {
			return
		}

		active := status == "online"
		err := database.DB.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{"active": active, "last_active": time.Now()}).Error
		if err != nil {
			logger.Error().Err(err).Str("user_id", userID).Msg("updateStatus failed")
			return
		}

		dispatch.Broadcast("participantStatusUpdate", gin.H{
			"participantId": userID,
			"status":        status,
			"active":        active,
		})
	})

	server.OnEvent("/", "getMessageHistory", func(s socketio.Conn, data map[string]interface{}) {
		chatID, _ := data["chatId"].(string)
		userID, _ := data["userId"].(string)
		if userID == "" {
			userID, _ = s.Context().(string)
		}
		page := 1
		if p, ok := data["page"].(float64); ok && p >= 1 {
			page = int(p)
		}

		result, err := vis.ListMessages(chatID, userID, page)
		if err != nil {
			logger.Error().Err(err).Str("chat_id", chatID).Msg("getMessageHistory failed")
			return
		}

		// Opening a history doubles as joining the chat's room.
		s.Join(chatID)

		s.Emit("messageHistory", gin.H{
			"messages":    result.Messages,
			"hasMore":     result.HasMore,
			"total":       result.Total,
			"currentPage": result.CurrentPage,
		})
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		userID, ok := registry.Leave(s.ID())
		if !ok {
			return
		}

		err := database.DB.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{"active": false, "socket_id": "", "last_active": time.Now()}).Error
		if err != nil {
			logger.Error().Err(err).Str("user_id", userID).Msg("disconnect bookkeeping failed")
		}

		database.CacheInvalidate(contactsCacheKey)

		dispatch.Broadcast("userLeft", gin.H{"userId": userID})
		dispatch.Broadcast("participantStatusUpdate", gin.H{
			"participantId": userID,
			"status":        "offline",
			"active":        false,
		})
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		logger.Warn().Err(e).Msg("socket error")
	})

	return server, dispatch
}

// upsertJoiningUser creates the user on first join or refreshes connection
// state on reconnect.
func upsertJoiningUser(userID, displayName, socketID string) (*models.User, error) {
	var user models.User
	err := database.DB.First(&user, "id = ?", userID).Error
	if err == nil {
		updates := map[string]interface{}{
			"socket_id":   socketID,
			"active":      true,
			"last_active": time.Now(),
		}
		if displayName != "" && displayName != user.DisplayName {
			updates["display_name"] = displayName
		}
		if uerr := database.DB.Model(&user).Updates(updates).Error; uerr != nil {
			return nil, uerr
		}
		return &user, nil
	}

	user = models.User{
		ID:          userID,
		DisplayName: displayName,
		SocketID:    socketID,
		Active:      true,
		IsPublic:    true,
		CreatedAt:   time.Now(),
		LastActive:  time.Now(),
	}
	if user.DisplayName == "" {
		user.DisplayName = "user-" + userID[:8]
	}
	if cerr := database.DB.Create(&user).Error; cerr != nil {
		return nil, cerr
	}
	return &user, nil
}

// attachmentsFromPayload pulls an attachments array out of a raw socket
// payload. Bad shapes are ignored rather than rejected.
func attachmentsFromPayload(data map[string]interface{}) datatypes.JSON {
	raw, ok := data["attachments"]
	if !ok {
		return nil
	}
	if list, ok := raw.([]interface{}); !ok || len(list) == 0 {
		return nil
	}
	blob, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	return datatypes.JSON(blob)
}

// SocketHandler wraps the socket.io server for gin.
func SocketHandler(server *socketio.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		server.ServeHTTP(c.Writer, c.Request)
	}
}
