package redisx

import "fmt"

func UnreadNotificationsKey(userID string) string {
	return fmt.Sprintf("f2m:notifications:unread:%s", userID)
}

func UnreadMessagesKey(userID string) string {
	return fmt.Sprintf("f2m:messages:unread:%s", userID)
}
