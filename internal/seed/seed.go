package seed

import (
	"context"

	"learnpath/internal/domain"
	"learnpath/internal/infrastructure/repository"
	"learnpath/pkg/logger"

	"github.com/google/uuid"
)

type pathSeed struct {
	title       string
	description string
	image       string
	modules     []moduleSeed
}

type moduleSeed struct {
	videoID string
	title   string
}

var pathsData = []pathSeed{
	{
		title:       "HTML Tutorials for Beginners",
		description: "HTML for Beginners Course. This full course is where you should begin your journey towards learning web development. Learn HTML basics before you attempt to learn CSS or JavaScript.",
		image:       "https://i.ytimg.com/vi/P0EGYTb1cBs/hqdefault.jpg",
		modules: []moduleSeed{
			{videoID: "P0EGYTb1cBs", title: "Introduction to HTML | An HTML5 Tutorial for Beginners"},
			{videoID: "QRvA8Mp-uME", title: "Head Tag in HTML | An HTML5 Head Element Tutorial"},
			{videoID: "tC56TakOjIE", title: "HTML Tag Text Basics | HTML5 Element Text Tutorial"},
			{videoID: "gJWNA3Fduek", title: "HTML Lists Tutorial | HTML5 List Types: Ordered, Unordered & Description"},
			{videoID: "iMj-TbN7ydg", title: "How to Add Links in HTML code | HTML5 Linking Tutorial"},
			{videoID: "0pBAfkZMKy0", title: "How to Insert Images in HTML | An HTML5 Image Tutorial"},
			{videoID: "kX3TfdUqpuU", title: "Semantic HTML Tags | HTML5 Semantic Elements Tutorial"},
			{videoID: "e23RA_Uo99o", title: "How to Create Tables in HTML | HTML5 Table Tutorial"},
			{videoID: "frAGrGN00OA", title: "HTML Forms and Inputs | HTML5 Tutorial for Beginners"},
			{videoID: "T5PD8ofhiug", title: "HTML5 Website Project for Beginners | First HTML Project Tutorial"},
			{videoID: "mJgBOIoGihA", title: "HTML Full Course for Beginners | Complete All-in-One Tutorial"},
		},
	},
	{
		title:       "React Hooks",
		description: "A playlist to cover all of the built-in React.js hooks and custom hook creation. useState, useEffect and useContext tutorials are found in the React.js Full Course for Beginners video.",
		image:       "https://i.ytimg.com/vi/FB_kOSHk1DM/hqdefault.jpg",
		modules: []moduleSeed{
			{videoID: "FB_kOSHk1DM", title: "useCallback STOPS this React MISTAKE | useCallback React Hooks Tutorial"},
			{videoID: "oR8gUi1LfWY", title: "useMemo Explained | React Hooks useMemo Tutorial"},
			{videoID: "s6UAuFzL308", title: "BUILD a React Timer with useRef | React Hooks useRef Tutorial"},
			{videoID: "26ogBZXeBwc", title: "useReducer is BETTER than useState | React Hook useReducer Tutorial"},
			{videoID: "pHxQtHwcT-s", title: "useLayoutEffect vs useEffect | React Hooks Tutorial"},
			{videoID: "ZtcgPhWv1e8", title: "useImperativeHandle Explained with an Example | React Hooks Tutorial"},
			{videoID: "NoylmJJPF48", title: "The Built-in React Hook NO ONE talks about!"},
			{videoID: "NqdqnfzOQFE", title: "Use Axios with React Hooks for Async-Await Requests"},
			{videoID: "U9Cth5xDEKs", title: "React v18 Hooks - useTransition vs useDeferredValue Examples & Comparison"},
			{videoID: "MHm-2YmWEek", title: "React Debounce Search Input API Call | useDebounce React Hook"},
		},
	},
}

// Run populates the catalog when it is empty. Safe to call on every boot.
func Run(ctx context.Context, catalog *repository.CatalogRepository, log *logger.Logger) error {
	count, err := catalog.CountPaths(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, p := range pathsData {
		path := &domain.Path{
			ID:          uuid.New(),
			Title:       p.title,
			Description: p.description,
			Image:       p.image,
		}
		if err := catalog.CreatePath(ctx, path); err != nil {
			return err
		}

		for i, m := range p.modules {
			module := &domain.Module{
				ID:          uuid.New(),
				Title:       m.title,
				Description: m.title,
				Image:       "https://i.ytimg.com/vi/" + m.videoID + "/hqdefault.jpg",
				ContentType: "youtube_video",
				Content:     m.videoID,
			}
			if err := catalog.CreateModule(ctx, module); err != nil {
				return err
			}
			if err := catalog.CreatePathModule(ctx, &domain.PathModule{
				PathID:   path.ID,
				ModuleID: module.ID,
				Order:    i + 1,
			}); err != nil {
				return err
			}
		}
		log.Info("seeded path", "title", p.title, "modules", len(p.modules))
	}
	return nil
}
