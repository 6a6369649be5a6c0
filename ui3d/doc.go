// Package ui3d draws world-space menus: a translucent panel with a
// highlighted selection band and one line of text per option.
//
// A Renderer follows the frame protocol of the render package. Call Prep
// for every visible menu, FinishPrep once, then Render inside the pass and
// PostRenderTrim after submission:
//
//	for id, m := range menus {
//		if err := ui.Prep(id, m.Menu, m.Transform); err != nil {
//			return err
//		}
//	}
//	ui.FinishPrep()
//	ui.Render(pass, camera)
//	ui.PostRenderTrim()
//
// Menus not prepped in a frame are released by FinishPrep. Menu text is
// only re-uploaded when a line of it changes.
package ui3d
