package script

import (
	"fmt"
	"strings"
	"time"

	"reel-pipeline/types"
)

// fallback returns the static template for the request's goal, personalized
// with the product. Goal-less requests rotate by day of week and category
// length so consecutive runs do not all look alike.
func (c *Composer) fallback(product *types.Product, req Request) *types.ReelScript {
	goal := req.Goal
	if goal == "" {
		goal = rotateGoal(c.now(), product.Category)
	}

	var s *types.ReelScript
	switch goal {
	case types.GoalEngagement:
		s = engagementTemplate(product)
	case types.GoalConversion:
		s = conversionTemplate(product)
	default:
		s = reachTemplate(product)
	}

	if len(req.TrendHints) > 0 {
		s.Caption += fmt.Sprintf("\n\ninspired by the '%s' wave 🌊", req.TrendHints[0])
	}
	return s
}

func effectiveGoal(goal types.Goal, now time.Time) types.Goal {
	if goal != "" {
		return goal
	}
	return rotateGoal(now, "")
}

var goalRotation = []types.Goal{types.GoalReach, types.GoalEngagement, types.GoalConversion}

func rotateGoal(now time.Time, category string) types.Goal {
	idx := (int(now.Weekday()) + len(category)) % len(goalRotation)
	return goalRotation[idx]
}

func reachTemplate(product *types.Product) *types.ReelScript {
	priceTag := fmt.Sprintf("%s %d", product.Currency, product.Price)
	return &types.ReelScript{
		Goal: types.GoalReach,
		Hook: "Camera slowly pans up from shoes to face in a dark parking garage. Text flashes: 'They said streetwear is dead...'",
		Scenes: []string{
			"Scene 1 (0-2s): Low-angle shot of sneakers on concrete. Moody bass starts. Text: 'They said streetwear is dead...'",
			fmt.Sprintf("Scene 2 (2-5s): Beat drops. Quick cuts showing %s details — logo, silhouette, fabric. Each cut syncs to beat.", strings.ToLower(product.Title)),
			"Scene 3 (5-10s): Model walks forward in slow-mo, full outfit visible. Camera pulls back. Text: '...we just made it louder.'",
			fmt.Sprintf("Scene 4 (10-15s): End frame with product flat-lay on black surface. 'Shop the look — link in bio' with %s overlay.", priceTag),
		},
		OnScreenText: []string{
			"They said streetwear is dead...",
			"...we just made it louder.",
			"RIIQX — Wear the statement.",
			priceTag + " | Link in bio",
		},
		Caption:  fmt.Sprintf("streetwear isn't a trend. it's a language.\n\nnew drop just hit different: %s.\n\ntap the link. wear the attitude. 🖤", strings.ToLower(product.Title)),
		Hashtags: []string{"#RIIQX", "#Streetwear", "#StreetStyle", "#IndianStreetwear", "#OOTD", "#FitCheck", "#UrbanFashion", "#NewDrop"},
		CTA:      "Link in bio → New drop just landed",
	}
}

func engagementTemplate(product *types.Product) *types.ReelScript {
	return &types.ReelScript{
		Goal: types.GoalEngagement,
		Hook: "Split screen: Left side shows a plain basic piece. Right side is the drop. Text: 'Pick a side.'",
		Scenes: []string{
			fmt.Sprintf("Scene 1 (0-2s): Split screen comparison. Left: basic plain piece. Right: %s. Text: 'Pick a side.'", product.Title),
			"Scene 2 (2-6s): Camera zooms into the RIIQX side. Model puts it on with attitude. Quick styling montage — chains, watch, cap.",
			"Scene 3 (6-10s): Full outfit mirror check. Model nods approvingly. Text: 'Thought so.'",
			"Scene 4 (10-12s): Comment prompt overlay: 'Left or Right? Drop a 🖤 for RIIQX'",
		},
		OnScreenText: []string{
			"Pick a side.",
			"Basic or Bold?",
			"Thought so. 🖤",
			"Drop a 🖤 if you chose right",
		},
		Caption:  "there are two types of people.\n\nthe ones who blend in. and the ones who don't.\n\nwhich one are you? comment below 👇",
		Hashtags: []string{"#RIIQX", "#BasicVsBold", "#StreetFashion", "#StyleChoice", "#IndianStreetStyle", "#FashionReels", "#OOTD"},
		CTA:      "Comment '🖤' if you chose the right side",
	}
}

func conversionTemplate(product *types.Product) *types.ReelScript {
	priceTag := fmt.Sprintf("%s %d", product.Currency, product.Price)
	return &types.ReelScript{
		Goal: types.GoalConversion,
		Hook: fmt.Sprintf("Close-up of hands unboxing %s. Text: 'POV: your RIIQX order just arrived 📦'", product.Title),
		Scenes: []string{
			"Scene 1 (0-3s): Hands open a matte black RIIQX package. ASMR-style audio. Top-down camera.",
			fmt.Sprintf("Scene 2 (3-6s): Pull out %s slowly. Show fabric texture close-up. Natural light.", product.Title),
			"Scene 3 (6-10s): Quick cut to wearing the outfit. Mirror shot. Confident nod.",
			fmt.Sprintf("Scene 4 (10-15s): Product card: %s | %s | 'Link in bio'. ★★★★★ overlay.", product.Title, priceTag),
		},
		OnScreenText: []string{
			"POV: Your RIIQX order just arrived",
			"The quality is insane 🤯",
			"From box to drip in 10 seconds",
			"Shop now → Link in bio",
		},
		Caption:  fmt.Sprintf("unboxing hits different when it's RIIQX.\n\nthe fabric. the fit. the feeling.\n\n%s — %s\n\n→ link in bio", strings.ToLower(product.Title), priceTag),
		Hashtags: []string{"#RIIQX", "#Unboxing", "#Streetwear", "#IndianStreetwear", "#NewDrop", "#OOTD", "#ShopNow"},
		CTA:      "Link in bio — limited stock on this drop",
	}
}
