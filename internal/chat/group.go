package chat

import (
	"log"
	"strings"

	"github.com/samber/lo"

	"messenger/internal/models"
)

func (r *Router) createGroup(conn Conn, actor *models.Identity, req CreateGroup) error {
	req.GroupName = strings.TrimSpace(req.GroupName)
	if err := r.check(req); err != nil {
		return err
	}

	members := []string{actor.UserID}
	ids := lo.Uniq(lo.Map(req.Members, func(id string, _ int) string { return strings.TrimSpace(id) }))
	for _, id := range ids {
		// the caller is implicit, whether named by id or by username
		if id == "" || id == actor.UserID || id == actor.Username {
			continue
		}
		if !r.identities.UserIDExists(id) {
			return notFoundf("user with id %s not found", id)
		}
		members = append(members, id)
	}
	if len(members) < 2 {
		return validationf("a group needs at least one other member")
	}

	group := models.Conversation{
		ID:        r.uniqueChatID(),
		Kind:      models.KindGroup,
		Name:      req.GroupName,
		CreatorID: actor.UserID,
		Members:   members,
		CreatedAt: r.now(),
	}
	if err := r.chats.CreateGroup(group); err != nil {
		return conflictf("group already exists")
	}
	log.Printf("group created id=%s name=%q creator=%s members=%d", group.ID, group.Name, actor.Username, len(members))

	created := models.Event{Name: models.EventGroupCreated, Data: models.GroupCreated{ChatID: group.ID, GroupName: group.Name}}
	conn.Send(created)
	for _, member := range members[1:] {
		r.sendToUser(member, created)
	}
	for _, member := range members {
		r.pushGroups(member)
	}
	return nil
}

func (r *Router) pushGroups(userID string) {
	groups := r.chats.ListGroupsForUser(userID)
	summaries := lo.Map(groups, func(g models.Conversation, _ int) models.ConversationSummary {
		return models.ConversationSummary{ID: g.ID, Name: g.Name, IsCreator: g.CreatorID == userID}
	})
	r.sendToUser(userID, models.Event{Name: models.EventGroupsList, Data: models.GroupsList{Groups: summaries}})
}

func (r *Router) leaveGroup(conn Conn, actor *models.Identity, req LeaveGroup) error {
	if err := r.check(req); err != nil {
		return err
	}
	group, err := r.chats.GetGroup(strings.TrimSpace(req.ChatID))
	if err != nil {
		return notFoundf("group not found")
	}
	if !group.HasMember(actor.UserID) {
		return forbiddenf("you are not a member of this group")
	}
	if group.CreatorID == actor.UserID {
		return statef("the creator cannot leave the group, delete it instead")
	}

	group.RemoveMember(actor.UserID)
	remaining := append([]string(nil), group.Members...)
	if len(remaining) <= 1 {
		r.destroy(group.ID)
		for _, member := range remaining {
			r.notice(member, "Group "+group.Name+" was removed because all other members left")
		}
	}
	for _, member := range remaining {
		r.pushGroups(member)
	}

	conn.Send(models.Event{Name: models.EventSystemMessage, Data: models.Notice{Message: "You left the group " + group.Name}})
	r.pushGroups(actor.UserID)
	return nil
}

func (r *Router) deleteGroup(actor *models.Identity, req DeleteGroup) error {
	if err := r.check(req); err != nil {
		return err
	}
	group, err := r.chats.GetGroup(strings.TrimSpace(req.ChatID))
	if err != nil {
		return notFoundf("group not found")
	}
	if group.CreatorID != actor.UserID {
		return forbiddenf("only the creator can delete this group")
	}
	name := group.Name
	members := append([]string(nil), group.Members...)
	r.destroy(group.ID)
	for _, member := range members {
		r.notice(member, "Group "+name+" was deleted")
		r.pushGroups(member)
	}
	return nil
}
