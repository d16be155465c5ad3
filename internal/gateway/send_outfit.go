package gateway

import (
	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

// OutfitWindowData is everything the outfit window shows, assembled by the
// game side: the current look, the addon-eligible outfits, and owned mounts.
type OutfitWindowData struct {
	Current        model.Outfit
	Mounted        bool
	RandomizeMount bool
	Outfits        []model.NamedOutfit
	Mounts         []model.NamedMount
}

// SendOutfitWindow opens the outfit selection dialog.
func (s *Server) SendOutfitWindow(c *Connection, data OutfitWindowData) {
	if len(data.Outfits) == 0 {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0xC8)

	addOutfit(&msg, data.Current)

	// Mount color bytes are required even without a mount.
	if data.Current.Mount == 0 {
		msg.AddByte(data.Current.MountHead)
		msg.AddByte(data.Current.MountBody)
		msg.AddByte(data.Current.MountLegs)
		msg.AddByte(data.Current.MountFeet)
	}

	msg.AddU16(0) // current familiar looktype

	msg.AddU16(uint16(len(data.Outfits)))
	for _, outfit := range data.Outfits {
		msg.AddU16(outfit.LookType)
		msg.AddString(outfit.Name)
		msg.AddByte(outfit.Addons)
		msg.AddByte(0x00) // mode: available
	}

	msg.AddU16(uint16(len(data.Mounts)))
	for _, mount := range data.Mounts {
		msg.AddU16(mount.ClientID)
		msg.AddString(mount.Name)
		msg.AddByte(0x00) // mode: available
	}

	msg.AddU16(0x00) // familiars

	msg.AddByte(0x00) // try outfit mode
	if data.Mounted {
		msg.AddByte(0x01)
	} else {
		msg.AddByte(0x00)
	}
	if data.RandomizeMount {
		msg.AddByte(0x01)
	} else {
		msg.AddByte(0x00)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendPodiumWindow opens the outfit dialog in podium mode, editing the
// outfit displayed on the podium item at pos.
func (s *Server) SendPodiumWindow(c *Connection, item *model.Item,
	pos model.Position, stackpos int,
	outfits []model.NamedOutfit, mounts []model.NamedMount) {
	podium := item.Podium
	if podium == nil || len(outfits) == 0 {
		return
	}

	player := c.player
	podiumOutfit := podium.Outfit
	playerOutfit := player.Outfit()
	isEmpty := podiumOutfit.LookType == 0 && podiumOutfit.Mount == 0

	if podiumOutfit.LookType == 0 {
		podiumOutfit.LookType = playerOutfit.LookType
		podiumOutfit.Head = playerOutfit.Head
		podiumOutfit.Body = playerOutfit.Body
		podiumOutfit.Legs = playerOutfit.Legs
		podiumOutfit.Feet = playerOutfit.Feet
		podiumOutfit.Addons = playerOutfit.Addons
	}

	if podiumOutfit.Mount == 0 {
		podiumOutfit.Mount = playerOutfit.Mount
		podiumOutfit.MountHead = playerOutfit.MountHead
		podiumOutfit.MountBody = playerOutfit.MountBody
		podiumOutfit.MountLegs = playerOutfit.MountLegs
		podiumOutfit.MountFeet = playerOutfit.MountFeet
	}

	// Fall back to the first unlocked outfit when the podium's is not owned.
	owned := false
	for _, outfit := range outfits {
		if outfit.LookType == podiumOutfit.LookType {
			owned = true
			break
		}
	}
	if !owned {
		podiumOutfit.LookType = outfits[0].LookType
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0xC8)

	msg.AddU16(podiumOutfit.LookType)
	msg.AddByte(podiumOutfit.Head)
	msg.AddByte(podiumOutfit.Body)
	msg.AddByte(podiumOutfit.Legs)
	msg.AddByte(podiumOutfit.Feet)
	msg.AddByte(podiumOutfit.Addons)

	msg.AddU16(podiumOutfit.Mount)
	msg.AddByte(podiumOutfit.MountHead)
	msg.AddByte(podiumOutfit.MountBody)
	msg.AddByte(podiumOutfit.MountLegs)
	msg.AddByte(podiumOutfit.MountFeet)

	msg.AddU16(0) // familiar, unused in podium mode

	msg.AddU16(uint16(len(outfits)))
	for _, outfit := range outfits {
		msg.AddU16(outfit.LookType)
		msg.AddString(outfit.Name)
		msg.AddByte(outfit.Addons)
		msg.AddByte(0x00)
	}

	msg.AddU16(uint16(len(mounts)))
	for _, mount := range mounts {
		msg.AddU16(mount.ClientID)
		msg.AddString(mount.Name)
		msg.AddByte(0x00)
	}

	msg.AddU16(0) // familiars, unused in podium mode

	msg.AddByte(0x05) // window mode: podium
	if (isEmpty && playerOutfit.Mount != 0) || podium.ShowMount {
		msg.AddByte(0x01) // mount checkbox
	} else {
		msg.AddByte(0x00)
	}
	msg.AddU16(0)
	msg.AddPosition(pos)
	msg.AddU16(item.ClientID)
	msg.AddByte(byte(stackpos))

	if podium.ShowPlatform {
		msg.AddByte(0x01)
	} else {
		msg.AddByte(0x00)
	}
	msg.AddByte(0x01) // outfit checkbox, ignored by the client
	msg.AddByte(byte(podium.Direction))
	c.WriteToOutputBuffer(&msg)
}
