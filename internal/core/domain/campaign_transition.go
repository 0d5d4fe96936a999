package domain

// transitionRule lists who may move a campaign along one edge.
type transitionRule struct {
	owner  bool
	admin  bool
	system bool
}

var campaignTransitions = map[CampaignStatus]map[CampaignStatus]transitionRule{
	CampaignDraft: {
		CampaignSubmitted: {owner: true, system: true},
	},
	CampaignSubmitted: {
		CampaignActive:  {admin: true},
		CampaignStopped: {admin: true},
	},
	CampaignActive: {
		CampaignPaused:    {owner: true, admin: true},
		CampaignCompleted: {owner: true, admin: true, system: true},
		CampaignStopped:   {admin: true},
	},
	CampaignPaused: {
		CampaignActive:    {owner: true, admin: true},
		CampaignCompleted: {owner: true, admin: true, system: true},
		CampaignStopped:   {admin: true},
	},
}

// TransitionAllowed reports whether the edge from -> to exists at all.
func TransitionAllowed(from, to CampaignStatus) bool {
	_, ok := campaignTransitions[from][to]
	return ok
}

// MayTransition reports whether the principal may move the campaign to the
// given status. Callers must check TransitionAllowed first.
func (c Campaign) MayTransition(p Principal, to CampaignStatus) bool {
	rule, ok := campaignTransitions[c.Status][to]
	if !ok {
		return false
	}
	switch p.Role {
	case RoleAdvertiser:
		return rule.owner && p.ID != "" && p.ID == c.AdvertiserID
	case RoleAdmin:
		return rule.admin
	case RoleSystem:
		return rule.system
	default:
		return false
	}
}
